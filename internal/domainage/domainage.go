// Package domainage implements the Domain-Age Probe (spec.md §4.4): a
// best-effort WHOIS registration-date lookup, scored by age in months.
//
// No dependency in the example pack provides a WHOIS client (the original
// Python source used the optional python-whois package, itself often
// unavailable, and degraded to "skipped" when it was missing). There is no
// equivalent Go library among the teacher or its siblings, so this hand-
// rolls the minimal WHOIS protocol (RFC 3912: connect to port 43, send the
// query line, read until EOF) the same way dnsprobe hand-rolls a DNSKEY
// query — both are cases where the wire protocol is trivial and no pack
// dependency covers it, not an escape hatch from using one that did.
package domainage

import (
	"bufio"
	"context"
	"net"
	"regexp"
	"strings"
	"time"
)

// Timeout bounds the whole WHOIS round trip (connect + read).
const Timeout = 4 * time.Second

// registryServers maps a handful of common TLDs directly to their
// authoritative WHOIS server, avoiding an extra IANA referral hop for the
// overwhelming majority of domains this probe will see.
var registryServers = map[string]string{
	"com":  "whois.verisign-grs.com",
	"net":  "whois.verisign-grs.com",
	"org":  "whois.pir.org",
	"io":   "whois.nic.io",
	"co":   "whois.nic.co",
	"dev":  "whois.nic.google",
	"app":  "whois.nic.google",
	"info": "whois.nic.info",
}

// Dialer is injected so tests can avoid real network WHOIS lookups.
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// Checker runs the Domain-Age Probe.
type Checker struct {
	Dial Dialer
}

// NewChecker returns a Checker that dials real WHOIS servers over TCP.
func NewChecker() *Checker {
	var d net.Dialer
	return &Checker{Dial: d.DialContext}
}

// Result is the Domain-Age Probe output, spec.md §4.4.
type Result struct {
	AgeMonths float64
	Skipped   bool
	Points    int
}

var creationDatePattern = regexp.MustCompile(`(?i)(?:creation date|created on|created|registered on)\s*:\s*([0-9]{4}-[0-9]{2}-[0-9]{2})`)

// Check attempts a WHOIS lookup for domain and scores the registration
// age: <1 month -> -15, 1-12 months -> 0, >12 months -> +10. Any failure
// (unknown TLD, no server, parse miss, timeout) yields Skipped with 0
// points, per spec.md §4.4.
func (c *Checker) Check(ctx context.Context, domain string) Result {
	tld := tldOf(domain)
	server, ok := registryServers[tld]
	if !ok {
		return Result{Skipped: true}
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	conn, err := c.Dial(ctx, "tcp", net.JoinHostPort(server, "43"))
	if err != nil {
		return Result{Skipped: true}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(domain + "\r\n")); err != nil {
		return Result{Skipped: true}
	}

	var body strings.Builder
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), 1<<20)
	for scanner.Scan() {
		body.WriteString(scanner.Text())
		body.WriteString("\n")
	}

	match := creationDatePattern.FindStringSubmatch(body.String())
	if match == nil {
		return Result{Skipped: true}
	}

	created, err := time.Parse("2006-01-02", match[1])
	if err != nil {
		return Result{Skipped: true}
	}

	ageMonths := time.Since(created).Hours() / 24 / 30
	result := Result{AgeMonths: ageMonths}
	switch {
	case ageMonths < 1:
		result.Points = -15
	case ageMonths <= 12:
		result.Points = 0
	default:
		result.Points = 10
	}
	return result
}

func tldOf(domain string) string {
	idx := strings.LastIndex(domain, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(domain[idx+1:])
}
