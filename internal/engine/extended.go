package engine

import (
	"context"

	"github.com/forgedlabs/mailverify/internal/dnsprobe"
	"github.com/forgedlabs/mailverify/internal/model"
	"github.com/forgedlabs/mailverify/internal/smtpprobe"
)

// runExtendedProbes runs every §4.7 ancillary probe whose prerequisites are
// met, writes each one's detail payload into details, and returns the total
// point contribution. isCatchAll is set when the catch-all probe fires.
func (e *Engine) runExtendedProbes(
	ctx context.Context,
	domain string,
	health dnsprobe.HealthResult,
	session smtpprobe.Session,
	rcpt smtpprobe.Result,
	rcptRan bool,
	address string,
	prober *smtpprobe.Prober,
	conn *smtpprobe.Conn,
	details map[string]any,
	isCatchAll *bool,
) int {
	total := 0
	mxHost := session.MXUsed
	haveMXHost := mxHost != ""

	if conn != nil {
		fp := prober.CheckProviderFingerprint(conn, session.EHLOExtensions)
		total += fp.Points
		details["provider_fingerprint"] = model.ProbeResult{Points: fp.Points, Detail: map[string]any{
			"extension_count": fp.ExtensionCount,
			"noop_failed":     fp.NoopFailed,
		}}.Merge()
	}

	errText := session.Error
	if errText == "" {
		errText = rcpt.Error
	}
	if errText != "" {
		ec := smtpprobe.ClassifyError(errText)
		total += ec.Points
		details["error_pattern"] = model.ProbeResult{Points: ec.Points, Detail: map[string]any{
			"category": ec.Category,
		}}.Merge()
	}

	if rcptRan && rcpt.SoftFailure && haveMXHost {
		retry := prober.RetrySoftFailure(ctx, mxHost, address)
		total += retry.Points
		details["retry_simulation"] = model.ProbeResult{Points: retry.Points, Detail: map[string]any{
			"attempted": retry.Attempted,
			"accepted":  retry.Accepted,
		}}.Merge()

		greylist := prober.CheckGreylistDepth(ctx, mxHost, address)
		total += greylist.Points
		details["greylist_depth"] = model.ProbeResult{Points: greylist.Points, Detail: map[string]any{
			"attempts_made":     greylist.AttemptsMade,
			"accepted_on_retry": greylist.AcceptedOnRetry,
		}}.Merge()
	}

	if session.TLSCert != nil {
		tlsCert := smtpprobe.CheckTLSCert(session.TLSCert, mxHost)
		total += tlsCert.Points
		details["tls_certificate"] = model.ProbeResult{Points: tlsCert.Points, Detail: map[string]any{
			"common_name_matches": tlsCert.CommonNameMatches,
			"issuer_differs":      tlsCert.IssuerDiffers,
			"expired":             tlsCert.Expired,
		}}.Merge()

		policy := smtpprobe.CheckTLSPolicy(session.TLSUpgraded, session.TLSCert)
		total += policy.Points
		details["tls_policy_strength"] = model.ProbeResult{Points: policy.Points, Detail: map[string]any{
			"modern": policy.Modern,
		}}.Merge()
	}

	if haveMXHost {
		ports := prober.ScanMailPorts(ctx, mxHost)
		total += ports.Points
		details["mail_port_scan"] = model.ProbeResult{Points: ports.Points, Detail: map[string]any{
			"open_ports": ports.OpenPorts,
		}}.Merge()
	}

	dnssec := e.DNS.CheckDNSSEC(ctx, domain)
	total += dnssec.Points
	details["dnssec"] = model.ProbeResult{Points: dnssec.Points, Detail: map[string]any{
		"enabled": dnssec.Enabled,
	}}.Merge()

	if haveMXHost {
		ptr := e.DNS.CheckPTR(ctx, mxHost)
		total += ptr.Points
		details["ptr"] = model.ProbeResult{Points: ptr.Points, Detail: map[string]any{
			"ptr_record": ptr.PTRRecord,
			"matched":    ptr.Matched,
		}}.Merge()

		ipRep := e.ipReputationCheck(ctx, mxHost)
		total += ipRep.Points
		details["ip_reputation"] = model.ProbeResult{Points: ipRep.Points, Detail: map[string]any{
			"blacklisted": ipRep.Blacklisted,
		}}.Merge()

		consistency := e.DNS.CheckMXConsistency(ctx, mxHost)
		total += consistency.Points
		details["mx_consistency"] = model.ProbeResult{Points: consistency.Points, Detail: map[string]any{
			"mx_to_a":       consistency.MXToA,
			"a_to_ptr":      consistency.AToPTR,
			"perfect_cycle": consistency.PerfectCycle,
		}}.Merge()

		strictness := prober.CheckSMTPStrictness(ctx, mxHost, len(session.EHLOExtensions) > 0)
		total += strictness.Points
		details["smtp_strictness"] = model.ProbeResult{Points: strictness.Points, Detail: map[string]any{
			"signal": strictness.Signal,
			"bucket": strictness.Bucket,
		}}.Merge()

		mailFromHealth := prober.CheckMailFromHealth(ctx, mxHost)
		total += mailFromHealth.Points
		details["mailfrom_health"] = model.ProbeResult{Points: mailFromHealth.Points, Detail: map[string]any{
			"rejected": mailFromHealth.Rejected,
		}}.Merge()

		roles := prober.CheckRoleAccounts(ctx, mxHost, domain)
		total += roles.Points
		details["role_accounts"] = model.ProbeResult{Points: roles.Points, Detail: map[string]any{
			"accepted": roles.Accepted,
			"rejected": roles.Rejected,
		}}.Merge()

		brand := dnsprobe.CheckMXBrand(mxHost)
		total += brand.Points
		details["mx_brand"] = model.ProbeResult{Points: brand.Points, Detail: map[string]any{
			"brand":   brand.Brand,
			"trusted": brand.Trusted,
		}}.Merge()

		popularity := e.mxPopularityCheck(ctx, mxHost)
		total += popularity.Points
		details["mx_popularity"] = model.ProbeResult{Points: popularity.Points, Detail: map[string]any{
			"popularity": popularity.Popularity,
		}}.Merge()

		stability := prober.CheckTCPStability(ctx, mxHost)
		total += stability.Points
		details["tcp_stability"] = model.ProbeResult{Points: stability.Points, Detail: map[string]any{
			"successes": stability.Successes,
			"attempts":  stability.Attempts,
		}}.Merge()

		*isCatchAll = e.catchAllCheck(ctx, mxHost, domain, prober)
		details["catch_all"] = model.ProbeResult{Detail: map[string]any{
			"is_catchall": *isCatchAll,
		}}.Merge()
	}

	redundancy := dnsprobe.CheckMXRedundancy(health.MXHosts)
	total += redundancy.Points
	details["mx_redundancy"] = model.ProbeResult{Points: redundancy.Points, Detail: map[string]any{
		"count": redundancy.Count,
	}}.Merge()

	if rcptRan {
		latencyFP := smtpprobe.CheckLatencyFingerprint(rcpt.LatencySeconds)
		total += latencyFP.Points
		details["latency_fingerprint"] = model.ProbeResult{Points: latencyFP.Points, Detail: map[string]any{
			"latency_seconds": rcpt.LatencySeconds,
		}}.Merge()

		quitResult := smtpprobe.CheckQuitBehavior(rcpt.QuitCode)
		total += quitResult.Points
		details["quit_behavior"] = model.ProbeResult{Points: quitResult.Points, Detail: map[string]any{
			"quit_code": rcpt.QuitCode,
		}}.Merge()

		if len(health.MXHosts) >= 2 {
			lb := prober.CheckLoadBalancer(ctx, health.MXHosts, address, rcpt.ResponseCode)
			total += lb.Points
			details["load_balancer"] = model.ProbeResult{Points: lb.Points, Detail: map[string]any{
				"checked":        lb.Checked,
				"secondary_code": lb.SecondaryCode,
				"consistent":     lb.Consistent,
			}}.Merge()
		}

		if haveMXHost {
			vrfy := prober.CheckVRFYLite(ctx, mxHost, domain, rcpt.ResponseCode)
			total += vrfy.Points
			details["vrfy_lite"] = model.ProbeResult{Points: vrfy.Points, Detail: map[string]any{
				"checked": vrfy.Checked,
				"differs": vrfy.Differs,
			}}.Merge()
		}
	}

	banner := smtpprobe.CheckBanner(session.Greeting.Raw)
	total += banner.Points
	details["banner_inspection"] = model.ProbeResult{Points: banner.Points, Detail: map[string]any{
		"category": banner.Category,
	}}.Merge()

	blacklist := e.DNS.CheckDomainBlacklists(ctx, domain)
	total += blacklist.Points
	details["domain_blacklists"] = model.ProbeResult{Points: blacklist.Points, Detail: map[string]any{
		"blacklisted":     blacklist.Blacklisted,
		"sources_checked": blacklist.SourcesChecked,
	}}.Merge()

	return total
}
