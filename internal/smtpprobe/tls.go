package smtpprobe

import (
	"crypto/tls"
	"strings"
	"time"
)

// modernCipherSuites backs §4.7 "TLS policy strength": suites considered
// non-downgradeable for this inspection (TLS 1.2 AEAD suites and anything
// negotiated under TLS 1.3, which only offers AEAD suites).
var modernCipherSuites = map[uint16]bool{
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256:       true,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384:       true,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305:        true,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256:     true,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384:     true,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305:      true,
	tls.TLS_AES_128_GCM_SHA256:                      true,
	tls.TLS_AES_256_GCM_SHA384:                      true,
	tls.TLS_CHACHA20_POLY1305_SHA256:                true,
}

func tlsCertInfo(state *tls.ConnectionState, mxHost string) *TLSCertInfo {
	if state == nil || len(state.PeerCertificates) == 0 {
		return nil
	}
	cert := state.PeerCertificates[0]
	info := &TLSCertInfo{
		CommonName:  cert.Subject.CommonName,
		IssuerCN:    cert.Issuer.CommonName,
		NotAfter:    cert.NotAfter,
		CipherSuite: state.CipherSuite,
	}
	info.SelfSigned = cert.Subject.CommonName != "" && cert.Subject.CommonName == cert.Issuer.CommonName
	return info
}

// TLSCertResult is §4.7 "TLS certificate intel".
type TLSCertResult struct {
	CommonNameMatches bool
	IssuerDiffers     bool
	Expired           bool
	Points            int
}

// CheckTLSCert scores the certificate captured during the session upgrade
// against the MX host it was presented for.
func CheckTLSCert(cert *TLSCertInfo, mxHost string) TLSCertResult {
	if cert == nil {
		return TLSCertResult{}
	}
	var result TLSCertResult

	lowerCN := strings.ToLower(cert.CommonName)
	lowerHost := strings.ToLower(mxHost)
	if lowerCN != "" && (lowerCN == lowerHost || strings.Contains(lowerHost, strings.TrimPrefix(lowerCN, "*."))) {
		result.CommonNameMatches = true
		result.Points += 5
	}

	if !cert.SelfSigned && cert.IssuerCN != "" && cert.IssuerCN != cert.CommonName {
		result.IssuerDiffers = true
		result.Points += 5
	} else {
		result.Points -= 10
	}

	if !cert.NotAfter.IsZero() && time.Now().After(cert.NotAfter) {
		result.Expired = true
		result.Points -= 10
	}

	return result
}

// TLSPolicyResult is §4.7 "TLS policy strength".
type TLSPolicyResult struct {
	Modern bool
	Points int
}

// CheckTLSPolicy scores the cipher negotiated during the STARTTLS upgrade;
// !upgraded or cert == nil (no upgrade happened) scores 0, matching the probe's
// "only on STARTTLS success" precondition.
func CheckTLSPolicy(upgraded bool, cert *TLSCertInfo) TLSPolicyResult {
	if !upgraded || cert == nil {
		return TLSPolicyResult{}
	}
	if modernCipherSuites[cert.CipherSuite] {
		return TLSPolicyResult{Modern: true, Points: 10}
	}
	return TLSPolicyResult{Points: -5}
}
