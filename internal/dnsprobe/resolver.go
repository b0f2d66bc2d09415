// Package dnsprobe implements the DNS-backed probes of the catalogue: DNS
// Health (§4.3), domain security signals, DNSSEC, PTR, IP reputation, MX
// consistency, MX popularity/brand, and the Spamhaus DBL / SURBL domain
// blacklist lookups. No exported Check* function returns an error to its
// caller — each returns its own result struct with Points set, lookup
// failures folded into that result, matching spec.md §3's "no probe throws
// out to the orchestrator" rule.
package dnsprobe

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strings"
	"time"
)

// QueryTimeout is the per-query timeout spec.md §4.3 mandates (2s).
const QueryTimeout = 2 * time.Second

// TotalBudget is the total DNS health-check budget spec.md §4.3 mandates (4s).
const TotalBudget = 4 * time.Second

// Resolver is the subset of *net.Resolver this package depends on. Probes
// take one as a field so tests can inject a fake, following the same
// pattern as optimode-emailkit's dnscache.Cache (injectable resolver) and
// its check.NewDNSCheckerWithLookup constructor.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
	LookupTXT(ctx context.Context, domain string) ([]string, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// DefaultResolver is the production resolver backed by the stdlib.
var DefaultResolver Resolver = &net.Resolver{}

// isNotFound reports whether err represents a definitive "no such record"
// answer (NXDOMAIN/NODATA) as opposed to a transient failure. Mirrors the
// distinction Loweel-sinksmtp's isTemporary draws from net.DNSError, used
// here the other way around: callers want to know "clean" from "timeout".
func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsNotFound
	}
	return false
}

// reverseIP renders an IPv4 address in DNSBL-query order, e.g.
// "1.2.3.4" -> "4.3.2.1", for queries like "<reversed-ip>.zen.spamhaus.org".
func reverseIP(ip string) (string, bool) {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return "", false
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "."), true
}

// randomLocalPart builds an n-character lowercase-alphanumeric local part
// for catch-all and role-account style probes, grounded in the Python
// original's random.choices(ascii_lowercase + digits, k=15).
func randomLocalPart(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// --- minimal raw DNSKEY existence query -----------------------------------
//
// net.Resolver exposes no generic by-RR-type lookup, and this module wires
// no DNS message library (miekg/dns is not in go.mod; see DESIGN.md).
// DNSSEC's DNSKEY record has no higher-level stdlib API, so
// this hand-rolls the minimal DNS wire query needed to ask "does a DNSKEY
// RRset exist at this name" — justified in DESIGN.md as a stdlib fallback
// for a genuinely unsupported lookup, not a substitute for an available
// library.

const dnsTypeDNSKEY = 48

// hasDNSKEY reports whether the zone apex for domain publishes a DNSKEY
// record, by sending a single UDP query to the system's configured
// resolver (read from /etc/resolv.conf) and checking for a non-empty
// answer section.
func hasDNSKEY(ctx context.Context, domain string) (bool, error) {
	server, err := systemResolverAddr()
	if err != nil {
		return false, err
	}

	query, id := buildQuery(domain, dnsTypeDNSKEY)

	d := net.Dialer{Timeout: QueryTimeout}
	conn, err := d.DialContext(ctx, "udp", server)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(QueryTimeout))
	}

	if _, err := conn.Write(query); err != nil {
		return false, err
	}

	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil {
		return false, err
	}
	return parseAnswerCount(buf[:n], id) > 0, nil
}

// buildQuery constructs a minimal DNS query packet for qname/qtype and
// returns it along with the transaction ID used, so the caller can match
// the response.
func buildQuery(qname string, qtype uint16) ([]byte, uint16) {
	id := uint16(rand.Intn(1 << 16))
	var buf []byte
	buf = append(buf, byte(id>>8), byte(id))
	buf = append(buf, 0x01, 0x00) // standard query, recursion desired
	buf = append(buf, 0x00, 0x01) // QDCOUNT=1
	buf = append(buf, 0x00, 0x00) // ANCOUNT=0
	buf = append(buf, 0x00, 0x00) // NSCOUNT=0
	buf = append(buf, 0x00, 0x00) // ARCOUNT=0

	for _, label := range strings.Split(strings.TrimSuffix(qname, "."), ".") {
		if label == "" {
			continue
		}
		buf = append(buf, byte(len(label)))
		buf = append(buf, []byte(label)...)
	}
	buf = append(buf, 0x00)

	qtypeBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(qtypeBuf, qtype)
	buf = append(buf, qtypeBuf...)
	buf = append(buf, 0x00, 0x01) // QCLASS=IN

	return buf, id
}

// parseAnswerCount reads just enough of a DNS response header to return
// ANCOUNT, after checking the transaction ID matches. Returns 0 on any
// malformed response rather than erroring, since callers treat "0" and
// "unparsable" identically (no DNSKEY found).
func parseAnswerCount(resp []byte, wantID uint16) int {
	if len(resp) < 12 {
		return 0
	}
	gotID := binary.BigEndian.Uint16(resp[0:2])
	if gotID != wantID {
		return 0
	}
	rcode := resp[3] & 0x0f
	if rcode != 0 {
		return 0
	}
	return int(binary.BigEndian.Uint16(resp[6:8]))
}

// systemResolverAddr returns "ip:53" for the first nameserver in
// /etc/resolv.conf, falling back to a public resolver if the file is
// absent or empty (e.g. in minimal containers).
func systemResolverAddr() (string, error) {
	ns, err := firstNameserver("/etc/resolv.conf")
	if err != nil || ns == "" {
		return "1.1.1.1:53", nil
	}
	return net.JoinHostPort(ns, "53"), nil
}

func firstNameserver(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "nameserver ") {
			fields := strings.Fields(line)
			if len(fields) == 2 {
				return fields[1], nil
			}
		}
	}
	return "", fmt.Errorf("no nameserver found in %s", path)
}
