// Package engine implements the Orchestrator (spec.md §4.1): the public
// verify(address, fast_mode, enable_internet_checks) entry point that runs
// every probe in declared order, accumulates points, and maps the result to
// a Verdict.
package engine

import (
	"context"

	"github.com/forgedlabs/mailverify/internal/cache"
	"github.com/forgedlabs/mailverify/internal/config"
	"github.com/forgedlabs/mailverify/internal/dnsprobe"
	"github.com/forgedlabs/mailverify/internal/domainage"
	"github.com/forgedlabs/mailverify/internal/enrich"
	"github.com/forgedlabs/mailverify/internal/httpcheck"
	"github.com/forgedlabs/mailverify/internal/model"
	"github.com/forgedlabs/mailverify/internal/provider"
	"github.com/forgedlabs/mailverify/internal/smtpprobe"
)

// Engine composes every probe collaborator plus the caches they share.
// Construct with New; the zero value is not usable.
type Engine struct {
	Caches    *cache.Families
	DNS       *dnsprobe.Checker
	DomainAge *domainage.Checker
	HTTP      *httpcheck.Checker
	Enrich    enrich.Adapter
	Overrides Overrides

	SenderDomain string
	EHLOHostname string
	EnableHIBP   bool
}

// New builds an Engine backed by real network collaborators.
func New(cfg *config.Config, adapter enrich.Adapter, overrides Overrides) *Engine {
	return &Engine{
		Caches:       cache.NewFamilies(cfg.CacheTTL),
		DNS:          dnsprobe.NewChecker(),
		DomainAge:    domainage.NewChecker(),
		HTTP:         httpcheck.NewChecker(),
		Enrich:       adapter,
		Overrides:    overrides,
		SenderDomain: cfg.SenderDomain,
		EHLOHostname: cfg.EHLOHostname,
		EnableHIBP:   cfg.EnableHIBP,
	}
}

// Verify runs the full pipeline of spec.md §4.1 against one address.
// confidenceMode is accepted per spec.md §9's Open Question but not
// consumed by scoring; it is reserved for a future confidence-weighting
// pass.
func (e *Engine) Verify(ctx context.Context, address string, fastMode, enableInternetChecks bool, confidenceMode string) model.Verdict {
	_ = confidenceMode
	details := make(map[string]any)

	valid, _, domain := checkSyntax(address)
	if !valid {
		status, reason := model.StatusForScore(0)
		return model.Verdict{Email: address, Status: status, Score: 0, Confidence: 0, Reason: reason, Details: details}
	}

	score := 10
	details["syntax"] = model.ProbeResult{Points: 10, Detail: map[string]any{"valid": true}}.Merge()

	health := e.dnsHealthCheck(ctx, domain)
	score += health.Points
	details["dns_health"] = model.ProbeResult{Points: health.Points, Detail: map[string]any{
		"domain_exists":        health.DomainExists,
		"mx_present":           health.MXPresent,
		"mx_hosts":             health.MXHosts,
		"spf_exists":           health.SPFExists,
		"dkim_exists":          health.DKIMExists,
		"dmarc_exists":         health.DMARCExists,
		"dns_response_time_ms": health.DNSResponseTimeMs,
	}}.Merge()

	if !health.DomainExists && !health.MXPresent {
		status, reason := model.StatusForScore(model.Clamp(score))
		return model.Verdict{Email: address, Status: status, Score: model.Clamp(score), Confidence: float64(model.Clamp(score)) / 100, Reason: reason, Details: details}
	}

	age := e.domainAgeCheck(ctx, domain)
	score += age.Points
	details["domain_age"] = model.ProbeResult{Points: age.Points, Skipped: age.Skipped, Detail: map[string]any{
		"age_months": age.AgeMonths,
	}}.Merge()

	prober := smtpprobe.NewProber(e.EHLOHostname, e.SenderDomain, fastMode)
	session, conn := prober.RunSession(ctx, health.MXHosts, domain)
	if conn != nil {
		defer conn.Close()
	}
	score += session.Points
	details["smtp_session"] = model.ProbeResult{Points: session.Points, Skipped: session.Skipped, Detail: map[string]any{
		"mx_used":         session.MXUsed,
		"port25_open":     session.Port25Open,
		"greeting_code":   session.Greeting.Code,
		"greeting_valid":  session.Greeting.Valid,
		"tls_upgraded":    session.TLSUpgraded,
		"error":           session.Error,
	}}.Merge()

	var rcpt smtpprobe.Result
	rcptRan := false
	if !session.Skipped && session.Port25Open && conn != nil {
		rcpt = prober.RunRCPT(ctx, conn, address)
		score += rcpt.Points
		rcptRan = true
	}
	details["rcpt"] = model.ProbeResult{Points: rcpt.Points, Skipped: !rcptRan, Detail: map[string]any{
		"accepted":             rcpt.Accepted,
		"rejected":             rcpt.Rejected,
		"hard_failure":         rcpt.HardFailure,
		"soft_failure":         rcpt.SoftFailure,
		"response_code":        rcpt.ResponseCode,
		"response_message":     rcpt.ResponseMessage,
		"unknown_mailbox":      smtpprobe.UnknownMailbox(rcpt.ResponseMessage),
		"rcpt_latency_seconds": rcpt.LatencySeconds,
		"error":                rcpt.Error,
	}}.Merge()

	security := e.dnsSecurityCheck(ctx, domain, health)
	score += security.Points
	details["domain_security"] = model.ProbeResult{Points: security.Points, Detail: map[string]any{
		"strong_spf":          security.StrongSPF,
		"dkim_dmarc_aligned":  security.DKIMDMARCAligned,
	}}.Merge()

	web := e.webPresenceCheck(ctx, domain)
	score += web.Points
	details["web_presence"] = model.ProbeResult{Points: web.Points, Detail: map[string]any{
		"reachable":   web.Reachable,
		"status_code": web.StatusCode,
	}}.Merge()

	isCatchAll := false
	if !fastMode {
		score += e.runExtendedProbes(ctx, domain, health, session, rcpt, rcptRan, address, prober, conn, details, &isCatchAll)
	}

	if rcptRan && rcpt.HardFailure && score > 10 {
		score = 10
	}

	score = provider.Cap(domain, score, rcptRan && rcpt.Accepted)

	risky := false
	if isCatchAll {
		score += 10
		risky = true
	}

	score = model.Clamp(score)
	status, reason := model.StatusForScore(score)

	if enableInternetChecks {
		if payload := enrich.Run(ctx, e.Enrich, address, e.EnableHIBP); payload != nil {
			details["internet_check"] = payload
		}
	}

	score, status = e.Overrides.Apply(domain, score, status)

	return model.Verdict{
		Email:      address,
		Status:     status,
		Score:      score,
		Confidence: float64(score) / 100,
		Reason:     reason,
		Risky:      risky,
		Details:    details,
	}
}
