package smtpprobe_test

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/forgedlabs/mailverify/internal/smtpprobe"
)

func TestCheckTLSCert_NilCertScoresZero(t *testing.T) {
	result := smtpprobe.CheckTLSCert(nil, "mx.example.com")
	assert.Equal(t, 0, result.Points)
}

func TestCheckTLSCert_CommonNameMatchesAndIssuerDiffers(t *testing.T) {
	cert := &smtpprobe.TLSCertInfo{
		CommonName: "mx.example.com",
		IssuerCN:   "Let's Encrypt",
		NotAfter:   time.Now().Add(30 * 24 * time.Hour),
	}
	result := smtpprobe.CheckTLSCert(cert, "mx.example.com")
	assert.True(t, result.CommonNameMatches)
	assert.True(t, result.IssuerDiffers)
	assert.False(t, result.Expired)
	assert.Equal(t, 10, result.Points)
}

func TestCheckTLSCert_Expired(t *testing.T) {
	cert := &smtpprobe.TLSCertInfo{
		CommonName: "mx.example.com",
		IssuerCN:   "Let's Encrypt",
		NotAfter:   time.Now().Add(-24 * time.Hour),
	}
	result := smtpprobe.CheckTLSCert(cert, "mx.example.com")
	assert.True(t, result.Expired)
	assert.Less(t, result.Points, 10)
}

func TestCheckTLSCert_SelfSigned(t *testing.T) {
	cert := &smtpprobe.TLSCertInfo{
		CommonName: "mx.example.com",
		IssuerCN:   "mx.example.com",
		SelfSigned: true,
		NotAfter:   time.Now().Add(30 * 24 * time.Hour),
	}
	result := smtpprobe.CheckTLSCert(cert, "mx.example.com")
	assert.False(t, result.IssuerDiffers)
	assert.Equal(t, -5, result.Points) // CN match (+5) plus the self-signed issuer penalty (-10)
}

func TestCheckTLSPolicy_NotUpgraded(t *testing.T) {
	result := smtpprobe.CheckTLSPolicy(false, &smtpprobe.TLSCertInfo{})
	assert.Equal(t, 0, result.Points)
}

func TestCheckTLSPolicy_ModernCipher(t *testing.T) {
	cert := &smtpprobe.TLSCertInfo{CipherSuite: tls.TLS_AES_128_GCM_SHA256}
	result := smtpprobe.CheckTLSPolicy(true, cert)
	assert.True(t, result.Modern)
	assert.Equal(t, 10, result.Points)
}

func TestCheckTLSPolicy_WeakCipher(t *testing.T) {
	cert := &smtpprobe.TLSCertInfo{CipherSuite: tls.TLS_RSA_WITH_AES_128_CBC_SHA}
	result := smtpprobe.CheckTLSPolicy(true, cert)
	assert.False(t, result.Modern)
	assert.Equal(t, -5, result.Points)
}
