package smtpprobe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// blockedProviders skips the SMTP Session Probe entirely for consumer
// webmail known to reject all RCPT probing regardless of mailbox state,
// grounded on original_source's smtp_blocked_domains list.
var blockedProviders = []string{
	"outlook.com", "hotmail.com", "live.com", "msn.com",
	"gmail.com", "googlemail.com", "yahoo.com", "yahoo.co.uk",
	"aol.com", "icloud.com", "me.com", "mac.com",
	"microsoft.com", "office365.com",
}

// transactionalMXPatterns skips the probe for MX hosts run by bulk
// transactional senders, same grounding.
var transactionalMXPatterns = []string{
	"inbound-smtp", "amazonaws.com", "sendgrid.net",
	"mailgun.org", "mailgun.com", "sparkpostmail.com",
	"postmarkapp.com", "mandrillapp.com",
}

func isBlockedDomain(domain string) bool {
	lower := strings.ToLower(domain)
	for _, blocked := range blockedProviders {
		if lower == blocked || strings.HasSuffix(lower, "."+blocked) {
			return true
		}
	}
	return false
}

func isTransactionalMX(mxHosts []string) bool {
	for _, host := range mxHosts {
		lower := strings.ToLower(host)
		for _, pattern := range transactionalMXPatterns {
			if strings.Contains(lower, pattern) {
				return true
			}
		}
	}
	return false
}

// Greeting is the SMTP banner line captured on connect; it has the same
// fields as model.Greeting.
type Greeting struct {
	Code  int
	Raw   string
	Valid bool
}

// TLSCertInfo carries the subset of a peer certificate the TLS Inspector
// needs (§4.7 "TLS certificate intel" and "TLS policy strength").
type TLSCertInfo struct {
	CommonName   string
	IssuerCN     string
	NotAfter     time.Time
	SelfSigned   bool
	CipherSuite  uint16
	CipherIsZero bool
}

// Session is the result of the SMTP Session Probe (spec.md §4.5).
type Session struct {
	Skipped        bool
	MXUsed         string
	Port25Open     bool
	Greeting       Greeting
	EHLOExtensions map[string]bool
	TLSUpgraded    bool
	TLSCert        *TLSCertInfo
	Error          string
	Points         int
}

// Prober runs the SMTP Session Probe and RCPT Probe against a domain's MX
// hosts, reusing one connection's state (mxUsed, extensions) across the
// ancillary probes that depend on the same session per spec.md §5's
// "at most two concurrent sessions" resource rule.
type Prober struct {
	Dial         Dialer
	HeloHostname string
	SenderDomain string
	FastMode     bool
}

// NewProber returns a Prober dialing real TCP connections.
func NewProber(heloHostname, senderDomain string, fastMode bool) *Prober {
	var d net.Dialer
	return &Prober{
		Dial:         d.DialContext,
		HeloHostname: heloHostname,
		SenderDomain: senderDomain,
		FastMode:     fastMode,
	}
}

func (p *Prober) connectTimeout() time.Duration {
	if p.FastMode {
		return 3 * time.Second
	}
	return 5 * time.Second
}

// RunSession executes §4.5 against the first two MX hosts in order, trying
// the next on a closed port. It does not close the returned connection;
// callers needing the RCPT Probe reuse the returned *Conn, and must call
// Close when done.
func (p *Prober) RunSession(ctx context.Context, mxHosts []string, domain string) (Session, *Conn) {
	if isBlockedDomain(domain) || isTransactionalMX(mxHosts) {
		return Session{Skipped: true}, nil
	}
	if len(mxHosts) == 0 {
		return Session{Skipped: true}, nil
	}

	candidates := mxHosts
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}

	var lastErr string
	for _, host := range candidates {
		c, err := dial(ctx, p.Dial, host, p.connectTimeout())
		if err != nil {
			lastErr = err.Error()
			continue
		}

		session := Session{MXUsed: host, Port25Open: true, Points: 10}

		c.setDeadline(p.connectTimeout())
		code, _, firstLine, err := c.readResponse()
		if err != nil {
			session.Error = err.Error()
			c.Close()
			return session, nil
		}
		session.Greeting = Greeting{Code: code, Raw: firstLine, Valid: strings.HasPrefix(firstLine, "220 ")}
		if session.Greeting.Valid {
			session.Points += 10
		} else {
			session.Points -= 10
		}

		c.setDeadline(p.connectTimeout())
		ehloCode, extensions, err := c.ehlo(p.HeloHostname)
		if err != nil {
			session.Error = err.Error()
			c.Close()
			return session, nil
		}
		session.EHLOExtensions = extensions

		if ehloCode >= 400 {
			// EHLO rejected; fall back to HELO per §4.6.
			heloCode, heloErr := c.helo(p.HeloHostname)
			if heloErr != nil {
				session.Error = heloErr.Error()
				c.Close()
				return session, nil
			}
			if heloCode >= 400 {
				session.Error = fmt.Sprintf("HELO rejected: %d", heloCode)
				c.Close()
				return session, nil
			}
			ehloCode = heloCode
			session.EHLOExtensions = map[string]bool{}
			extensions = session.EHLOExtensions
		}

		if !p.FastMode && ehloCode < 500 && extensions["STARTTLS"] {
			c.setDeadline(10 * time.Second)
			state, err := c.startTLS(host)
			if err == nil {
				session.TLSUpgraded = true
				session.Points += 5
				session.TLSCert = tlsCertInfo(state, host)
				// Re-issue EHLO over the encrypted channel; most servers
				// require it and advertise additional extensions post-TLS.
				if _, ext2, err2 := c.ehlo(p.HeloHostname); err2 == nil {
					session.EHLOExtensions = ext2
				}
			}
		}

		return session, c
	}

	return Session{Error: lastErr}, nil
}
