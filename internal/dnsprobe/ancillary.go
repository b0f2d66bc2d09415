package dnsprobe

import (
	"context"
	"strings"
)

// DNSSECResult is probe §4.7 "DNSSEC": DNSKEY present at the zone → +5.
type DNSSECResult struct {
	Enabled bool
	Points  int
}

func (c *Checker) CheckDNSSEC(ctx context.Context, domain string) DNSSECResult {
	ok, err := hasDNSKEY(ctx, domain)
	if err != nil || !ok {
		return DNSSECResult{}
	}
	return DNSSECResult{Enabled: true, Points: 5}
}

// PTRResult is probe §4.7 "PTR": reverse-DNS of the MX's A record.
type PTRResult struct {
	PTRRecord string
	Matched   bool
	Points    int
}

func (c *Checker) CheckPTR(ctx context.Context, mxHost string) PTRResult {
	addrs, err := c.Resolver.LookupHost(ctx, mxHost)
	if err != nil || len(addrs) == 0 {
		return PTRResult{Points: -5}
	}
	names, err := c.Resolver.LookupAddr(ctx, addrs[0])
	if err != nil || len(names) == 0 {
		return PTRResult{Points: -5}
	}
	ptr := strings.TrimSuffix(names[0], ".")
	if strings.Contains(mxHost, ptr) || strings.Contains(ptr, mxHost) {
		return PTRResult{PTRRecord: ptr, Matched: true, Points: 5}
	}
	return PTRResult{PTRRecord: ptr, Points: -5}
}

// IPReputationResult is probe §4.7 "IP reputation": Spamhaus ZEN DNSBL.
type IPReputationResult struct {
	Blacklisted bool
	Points      int
}

func (c *Checker) CheckIPReputation(ctx context.Context, mxHost string) IPReputationResult {
	addrs, err := c.Resolver.LookupHost(ctx, mxHost)
	if err != nil || len(addrs) == 0 {
		return IPReputationResult{}
	}
	reversed, ok := reverseIP(addrs[0])
	if !ok {
		return IPReputationResult{Points: 10}
	}
	if _, err := c.Resolver.LookupHost(ctx, reversed+".zen.spamhaus.org"); err == nil {
		return IPReputationResult{Blacklisted: true, Points: -10}
	}
	return IPReputationResult{Points: 10}
}

// MXConsistencyResult is probe §4.7 "MX↔A consistency": MX -> A -> PTR ->
// forward(PTR) == MX's IP is a "perfect cycle".
type MXConsistencyResult struct {
	MXToA        bool
	AToPTR       bool
	PerfectCycle bool
	Points       int
}

func (c *Checker) CheckMXConsistency(ctx context.Context, mxHost string) MXConsistencyResult {
	addrs, err := c.Resolver.LookupHost(ctx, mxHost)
	if err != nil || len(addrs) == 0 {
		return MXConsistencyResult{Points: -10}
	}
	mxIP := addrs[0]

	names, err := c.Resolver.LookupAddr(ctx, mxIP)
	if err != nil || len(names) == 0 {
		return MXConsistencyResult{MXToA: true, Points: -10}
	}
	ptr := names[0]

	ptrAddrs, err := c.Resolver.LookupHost(ctx, ptr)
	if err != nil {
		return MXConsistencyResult{MXToA: true, AToPTR: true, Points: -10}
	}
	for _, a := range ptrAddrs {
		if a == mxIP {
			return MXConsistencyResult{MXToA: true, AToPTR: true, PerfectCycle: true, Points: 10}
		}
	}
	return MXConsistencyResult{MXToA: true, AToPTR: true, Points: -10}
}

// MXRedundancyResult is probe §4.7 "MX redundancy".
type MXRedundancyResult struct {
	Count  int
	Points int
}

func CheckMXRedundancy(mxHosts []string) MXRedundancyResult {
	n := len(mxHosts)
	switch {
	case n == 0:
		return MXRedundancyResult{Count: n, Points: -20}
	case n == 1:
		return MXRedundancyResult{Count: n, Points: -3}
	case n <= 4:
		return MXRedundancyResult{Count: n, Points: 5}
	default:
		return MXRedundancyResult{Count: n, Points: 3}
	}
}

// mxBrands maps an MX hostname suffix/substring to a trusted brand name,
// grounded on original_source's trusted_brands table.
var mxBrands = map[string]string{
	"google.com":       "Gmail",
	"outlook.com":      "Microsoft",
	"secureserver.net": "GoDaddy",
	"privateemail.com": "Namecheap",
	"mailsrvr.com":     "Rackspace",
	"amazonaws.com":    "AWS SES",
	"sendgrid.net":     "SendGrid",
	"mailgun.org":      "Mailgun",
	"mailgun.com":      "Mailgun",
	"zoho.com":         "Zoho",
	"yahoo.com":        "Yahoo",
	"aol.com":          "AOL",
}

// MXBrandResult is probe §4.7 "MX brand".
type MXBrandResult struct {
	Brand   string
	Trusted bool
	Points  int
}

func CheckMXBrand(mxHost string) MXBrandResult {
	lower := strings.ToLower(mxHost)
	for pattern, brand := range mxBrands {
		if strings.Contains(lower, pattern) {
			return MXBrandResult{Brand: brand, Trusted: true, Points: 10}
		}
	}
	return MXBrandResult{Brand: "custom"}
}

// popularMXPatterns backs the MX-popularity probe referenced in §2's
// Probe Catalogue share and original_source's "Free Reverse MX Lookup".
var popularMXPatterns = []string{
	"privateemail.com", "zoho.com", "hostinger.com", "google.com",
	"outlook.com", "yahoo.com", "amazonaws.com", "sendgrid.net", "mailgun.org",
}

// MXPopularityResult reports whether an MX host belongs to a widely-shared
// hosting provider.
type MXPopularityResult struct {
	Popularity string
	Points     int
}

func CheckMXPopularity(mxHost string) MXPopularityResult {
	lower := strings.ToLower(mxHost)
	for _, pattern := range popularMXPatterns {
		if strings.Contains(lower, pattern) {
			return MXPopularityResult{Popularity: "high", Points: 10}
		}
	}
	return MXPopularityResult{Popularity: "unknown"}
}

// BlacklistResult is probe §4.7 "Domain blacklists": Spamhaus DBL + SURBL.
type BlacklistResult struct {
	Blacklisted    bool
	SourcesChecked []string
	Points         int
}

func (c *Checker) CheckDomainBlacklists(ctx context.Context, domain string) BlacklistResult {
	result := BlacklistResult{SourcesChecked: []string{}}

	if _, err := c.Resolver.LookupHost(ctx, domain+".dbl.spamhaus.org"); err == nil {
		result.Blacklisted = true
		result.SourcesChecked = append(result.SourcesChecked, "spamhaus_dbl")
		result.Points = -10
		return result
	}
	result.SourcesChecked = append(result.SourcesChecked, "spamhaus_dbl")

	if _, err := c.Resolver.LookupHost(ctx, domain+".multi.surbl.org"); err == nil {
		result.Blacklisted = true
		result.SourcesChecked = append(result.SourcesChecked, "surbl")
		result.Points = -10
		return result
	}
	result.SourcesChecked = append(result.SourcesChecked, "surbl")

	result.Points = 10
	return result
}
