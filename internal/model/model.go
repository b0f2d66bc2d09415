// Package model holds the shared record types that flow between the
// DNS/SMTP/HTTP probes, the probe catalogue, and the orchestrator.
//
// Every probe's outcome reaches the Verdict wrapped in a ProbeResult; none
// of the probes raise errors to their caller. Verdict is the only place status is computed from score.
package model

import "time"

// Status is one of the five verdict buckets a Verification collapses to.
type Status string

const (
	StatusValid         Status = "valid"
	StatusLikelyValid   Status = "likely_valid"
	StatusUncertain     Status = "uncertain"
	StatusLikelyInvalid Status = "likely_invalid"
	StatusInvalid       Status = "invalid"
)

// MXHost is one resolved mail exchanger, ordered by preference.
type MXHost struct {
	Host string
	Pref uint16
}

// ProbeResult is the common envelope every probe returns. Points may be
// negative. Detail carries probe-specific fields and is always JSON-shaped
// so it can be embedded verbatim under Verdict.Details.
type ProbeResult struct {
	Name    string         `json:"-"`
	Points  int            `json:"-"`
	Skipped bool           `json:"skipped,omitempty"`
	Detail  map[string]any `json:"-"`
}

// Merge flattens Detail plus the bookkeeping fields into one map so it can
// be serialized as the value under Verdict.Details[Name].
func (r ProbeResult) Merge() map[string]any {
	out := make(map[string]any, len(r.Detail)+2)
	for k, v := range r.Detail {
		out[k] = v
	}
	if r.Skipped {
		out["skipped"] = true
	}
	out["points"] = r.Points
	return out
}

// Greeting is the SMTP banner line captured on connect.
type Greeting struct {
	Code  int
	Raw   string
	Valid bool
}

// TLSCert is the subset of peer-certificate fields the TLS Inspector reads
// off a STARTTLS upgrade.
type TLSCert struct {
	CommonName   string
	IssuerCN     string
	NotAfter     time.Time
	SelfSigned   bool
	CipherSuite  uint16
	CipherIsZero bool
}

// SessionSnapshot is the result of the SMTP Session Probe (§4.5): a TCP
// connect, greeting read, and optional STARTTLS upgrade against one MX host.
type SessionSnapshot struct {
	MXUsed         string
	Port25Open     bool
	Greeting       Greeting
	EHLOExtensions map[string]bool
	TLSUpgraded    bool
	TLSCert        *TLSCert
	Error          string
	Skipped        bool
}

// RcptSnapshot is the result of the RCPT Probe (§4.6). Exactly one of
// Accepted/Rejected/SoftFailure is true, or none on a transport error.
type RcptSnapshot struct {
	Accepted           bool
	Rejected           bool
	HardFailure        bool
	SoftFailure        bool
	ResponseCode       int
	ResponseMessage    string
	RcptLatencySeconds float64
	Error              string
	Skipped            bool
}

// VerificationContext is built incrementally over the lifetime of one
// Verify() call and discarded once the Verdict is emitted.
type VerificationContext struct {
	Address               string
	LocalPart              string
	Domain                 string
	MXHosts                []string
	Session                *SessionSnapshot
	Rcpt                   *RcptSnapshot
	FastMode               bool
	EnableInternetChecks   bool
	SenderDomain           string
}

// Verdict is the stable, public output schema described in spec.md §6.
type Verdict struct {
	Email      string         `json:"email"`
	Status     Status         `json:"status"`
	Score      int            `json:"score"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason"`
	Risky      bool           `json:"risky,omitempty"`
	Details    map[string]any `json:"details"`
}

// Clamp bounds a raw accumulated score to [0, 100].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// StatusForScore maps a clamped score to its verdict bucket per spec.md §4.9.
func StatusForScore(score int) (Status, string) {
	switch {
	case score >= 90:
		return StatusValid, "Very likely valid"
	case score >= 70:
		return StatusLikelyValid, "Probably valid but unconfirmed"
	case score >= 50:
		return StatusUncertain, "Uncertain (common when SMTP blocks verification)"
	case score >= 20:
		return StatusLikelyInvalid, "Likely invalid"
	default:
		return StatusInvalid, "Definitely invalid"
	}
}
