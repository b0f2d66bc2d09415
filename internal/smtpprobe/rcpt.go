package smtpprobe

import (
	"context"
	"strings"
	"time"
)

// Result is the RCPT Probe output (spec.md §4.6), the heart of the
// verifier.
type Result struct {
	Accepted        bool
	Rejected        bool
	HardFailure     bool
	SoftFailure     bool
	ResponseCode    int
	ResponseMessage string
	LatencySeconds  float64
	QuitCode        int
	Error           string
	Points          int
}

// RunRCPT executes §4.6 over an already-EHLO'd connection: MAIL FROM,
// timed RCPT TO, QUIT. The caller owns c and remains responsible for
// closing it; once RunRCPT has sent QUIT the connection accepts no further
// commands.
func (p *Prober) RunRCPT(ctx context.Context, c *Conn, address string) Result {
	c.setDeadline(8 * time.Second)

	mailFrom := "verify@" + p.SenderDomain
	mailCode, _, err := c.mailFrom(mailFrom)
	if err != nil {
		return Result{Error: err.Error()}
	}
	if mailCode >= 500 {
		return Result{ResponseCode: mailCode, Error: "MAIL FROM rejected"}
	}

	start := time.Now()
	rcptCode, rcptMsg, err := c.rcptTo(address)
	latency := time.Since(start).Seconds()
	if err != nil {
		return Result{Error: err.Error(), LatencySeconds: latency}
	}

	result := classifyRCPT(rcptCode, rcptMsg)
	result.LatencySeconds = latency
	result.Points += latencyScore(latency)

	quitCode, _ := c.quit()
	result.QuitCode = quitCode

	return result
}

func classifyRCPT(code int, msg string) Result {
	lowerMsg := strings.ToLower(msg)
	result := Result{ResponseCode: code, ResponseMessage: msg}

	switch {
	case code == 250 || code == 251:
		result.Accepted = true
		result.Points = 10
	case code >= 500 && code < 600:
		result.Rejected = true
		result.HardFailure = true
		result.Points = 0
		_ = lowerMsg // classification detail: "user unknown"/"5.1.1" share this bucket
	case code == 450 || code == 451 || code == 421:
		result.SoftFailure = true
		result.Points = 10
	default:
		// unrecognised status: neither flag, no points
	}
	return result
}

// latencyScore implements §4.6's RCPT round-trip scoring.
func latencyScore(seconds float64) int {
	switch {
	case seconds < 1:
		return -10
	case seconds > 15:
		return -5
	default:
		return 5
	}
}

// UnknownMailbox reports whether a rejection message names a specific
// unknown-mailbox condition, used only for the response detail payload —
// both hard-failure rows in §4.6's table score identically.
func UnknownMailbox(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "user unknown") || strings.Contains(lower, "5.1.1")
}
