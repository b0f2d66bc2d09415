package engine

import (
	"context"

	"github.com/forgedlabs/mailverify/internal/dnsprobe"
	"github.com/forgedlabs/mailverify/internal/domainage"
	"github.com/forgedlabs/mailverify/internal/httpcheck"
	"github.com/forgedlabs/mailverify/internal/smtpprobe"
)

// dnsHealthCheck wraps dnsprobe.Checker.CheckHealth with the DNSHealth
// cache family, keyed by domain.
func (e *Engine) dnsHealthCheck(ctx context.Context, domain string) dnsprobe.HealthResult {
	if cached, ok := e.Caches.DNSHealth.Get(domain); ok {
		if result, ok := cached.(dnsprobe.HealthResult); ok {
			return result
		}
	}
	result := e.DNS.CheckHealth(ctx, domain)
	e.Caches.DNSHealth.Set(domain, result)
	return result
}

func (e *Engine) dnsSecurityCheck(ctx context.Context, domain string, health dnsprobe.HealthResult) dnsprobe.SecurityResult {
	if cached, ok := e.Caches.DomainSecurity.Get(domain); ok {
		if result, ok := cached.(dnsprobe.SecurityResult); ok {
			return result
		}
	}
	result := e.DNS.CheckSecurity(ctx, domain, health)
	e.Caches.DomainSecurity.Set(domain, result)
	return result
}

func (e *Engine) domainAgeCheck(ctx context.Context, domain string) domainage.Result {
	if cached, ok := e.Caches.DomainAge.Get(domain); ok {
		if result, ok := cached.(domainage.Result); ok {
			return result
		}
	}
	result := e.DomainAge.Check(ctx, domain)
	e.Caches.DomainAge.Set(domain, result)
	return result
}

func (e *Engine) webPresenceCheck(ctx context.Context, domain string) httpcheck.Result {
	if cached, ok := e.Caches.WebPresence.Get(domain); ok {
		if result, ok := cached.(httpcheck.Result); ok {
			return result
		}
	}
	result := e.HTTP.Check(ctx, domain)
	e.Caches.WebPresence.Set(domain, result)
	return result
}

func (e *Engine) ipReputationCheck(ctx context.Context, mxHost string) dnsprobe.IPReputationResult {
	if cached, ok := e.Caches.IPReputation.Get(mxHost); ok {
		if result, ok := cached.(dnsprobe.IPReputationResult); ok {
			return result
		}
	}
	result := e.DNS.CheckIPReputation(ctx, mxHost)
	e.Caches.IPReputation.Set(mxHost, result)
	return result
}

func (e *Engine) mxPopularityCheck(ctx context.Context, mxHost string) dnsprobe.MXPopularityResult {
	if cached, ok := e.Caches.MXPopularity.Get(mxHost); ok {
		if result, ok := cached.(dnsprobe.MXPopularityResult); ok {
			return result
		}
	}
	result := dnsprobe.CheckMXPopularity(mxHost)
	e.Caches.MXPopularity.Set(mxHost, result)
	return result
}

func (e *Engine) catchAllCheck(ctx context.Context, mxHost, domain string, prober *smtpprobe.Prober) bool {
	if cached, ok := e.Caches.CatchAll.Get(domain); ok {
		return cached
	}
	result := prober.CheckCatchAll(ctx, mxHost, domain).IsCatchAll
	e.Caches.CatchAll.Set(domain, result)
	return result
}
