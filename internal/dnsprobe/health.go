package dnsprobe

import (
	"context"
	"net"
	"strings"
	"time"
)

// dkimSelectors is the fixed set spec.md §4.3 checks, in order; the probe
// stops at the first hit.
var dkimSelectors = []string{"default", "google", "selector1", "selector2", "k1", "mail"}

// HealthResult is the DNS Health Probe output (spec.md §4.3).
type HealthResult struct {
	DomainExists      bool
	MXPresent         bool
	MXHosts           []string
	SPFExists         bool
	DKIMExists        bool
	DMARCExists       bool
	DNSResponseTimeMs float64
	Points            int
}

// Checker groups the DNS-backed probes under one injected Resolver.
type Checker struct {
	Resolver Resolver
}

// NewChecker returns a Checker backed by the stdlib resolver.
func NewChecker() *Checker {
	return &Checker{Resolver: DefaultResolver}
}

// query runs fn against a child context bounded by QueryTimeout, releasing
// the child context's resources before returning.
func query(ctx context.Context, fn func(context.Context) error) error {
	child, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()
	return fn(child)
}

// CheckHealth runs the DNS Health Probe: MX/A existence, SPF/DMARC/DKIM
// presence, and DNS response time scoring, exactly as spec.md §4.3.
func (c *Checker) CheckHealth(ctx context.Context, domain string) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, TotalBudget)
	defer cancel()

	var result HealthResult
	start := time.Now()

	var mxs []*net.MX
	_ = query(ctx, func(qctx context.Context) error {
		m, err := c.Resolver.LookupMX(qctx, domain)
		mxs = m
		return err
	})
	if len(mxs) > 0 {
		result.MXPresent = true
		result.DomainExists = true
		result.Points += 20
		hosts := make([]string, 0, len(mxs))
		for _, mx := range mxs {
			hosts = append(hosts, strings.TrimSuffix(mx.Host, "."))
		}
		result.MXHosts = hosts
	} else {
		// No MX: fall back to A record existence. A alone grants no points.
		_ = query(ctx, func(qctx context.Context) error {
			addrs, err := c.Resolver.LookupHost(qctx, domain)
			if err == nil && len(addrs) > 0 {
				result.DomainExists = true
			}
			return err
		})
	}

	var spfTXT []string
	_ = query(ctx, func(qctx context.Context) error {
		txts, err := c.Resolver.LookupTXT(qctx, domain)
		spfTXT = txts
		return err
	})
	for _, txt := range spfTXT {
		if strings.HasPrefix(txt, "v=spf1") {
			result.SPFExists = true
			result.Points += 5
			break
		}
	}

	var dmarcTXT []string
	_ = query(ctx, func(qctx context.Context) error {
		txts, err := c.Resolver.LookupTXT(qctx, "_dmarc."+domain)
		dmarcTXT = txts
		return err
	})
	for _, txt := range dmarcTXT {
		if strings.HasPrefix(txt, "v=DMARC1") {
			result.DMARCExists = true
			result.Points += 5
			break
		}
	}

	for _, selector := range dkimSelectors {
		found := false
		_ = query(ctx, func(qctx context.Context) error {
			_, err := c.Resolver.LookupTXT(qctx, selector+"._domainkey."+domain)
			found = err == nil
			return err
		})
		if found {
			result.DKIMExists = true
			result.Points += 5
			break
		}
	}

	elapsed := time.Since(start)
	result.DNSResponseTimeMs = float64(elapsed) / float64(time.Millisecond)
	switch {
	case elapsed < 300*time.Millisecond:
		result.Points += 3
	case elapsed > 800*time.Millisecond:
		result.Points -= 3
	}

	return result
}

// SecurityResult is the cached domain-security sub-probe output, §4.3:
// "Domain-security sub-probe (cached)".
type SecurityResult struct {
	StrongSPF        bool
	DKIMDMARCAligned bool
	Points           int
}

// CheckSecurity evaluates SPF strength and DKIM+DMARC alignment. It reuses
// the SPF/DKIM/DMARC presence already computed by CheckHealth but needs the
// raw SPF record text, so it re-resolves TXT once (callers are expected to
// cache the result per spec.md §4.3's "cached" note).
func (c *Checker) CheckSecurity(ctx context.Context, domain string, health HealthResult) SecurityResult {
	var result SecurityResult

	if health.SPFExists {
		var txts []string
		_ = query(ctx, func(qctx context.Context) error {
			t, err := c.Resolver.LookupTXT(qctx, domain)
			txts = t
			return err
		})
		for _, txt := range txts {
			if strings.HasPrefix(txt, "v=spf1") && len(txt) > 10 &&
				(strings.Contains(txt, "include:") || strings.Contains(txt, "ip4:") || strings.Contains(txt, "ip6:")) {
				result.StrongSPF = true
				result.Points += 3
				break
			}
		}
	}

	if health.DKIMExists && health.DMARCExists {
		result.DKIMDMARCAligned = true
		result.Points += 5
	}

	return result
}
