// Package provider holds the Provider Rule Table (spec.md §6): a per-domain
// ceiling applied when the RCPT probe could not confirm mailbox acceptance,
// because the provider is known to always reject, always accept, or behave
// unpredictably toward unauthenticated SMTP probing.
package provider

import "strings"

// Rule is one entry of the Provider Rule Table.
type Rule struct {
	Suffix                string
	MaxScoreWithoutRCPT   int
	AlwaysBlocks          bool
	MayAcceptAll          bool
	AcceptAll             bool
	ReliableRejections    bool
}

// rules is bit-exact to spec.md §6's table.
var rules = []Rule{
	{Suffix: "gmail.com", MaxScoreWithoutRCPT: 55, AlwaysBlocks: true},
	{Suffix: "googlemail.com", MaxScoreWithoutRCPT: 55, AlwaysBlocks: true},
	{Suffix: "yahoo.com", MaxScoreWithoutRCPT: 55, AlwaysBlocks: true},
	{Suffix: "yahoo.co.uk", MaxScoreWithoutRCPT: 55, AlwaysBlocks: true},
	{Suffix: "outlook.com", MaxScoreWithoutRCPT: 60, AlwaysBlocks: true, MayAcceptAll: true},
	{Suffix: "hotmail.com", MaxScoreWithoutRCPT: 60, AlwaysBlocks: true},
	{Suffix: "live.com", MaxScoreWithoutRCPT: 60, AlwaysBlocks: true},
	{Suffix: "zoho.com", MaxScoreWithoutRCPT: 75, ReliableRejections: true},
	{Suffix: "protonmail.com", MaxScoreWithoutRCPT: 50, AlwaysBlocks: true, AcceptAll: true},
	{Suffix: "icloud.com", MaxScoreWithoutRCPT: 50, AlwaysBlocks: true},
	{Suffix: "me.com", MaxScoreWithoutRCPT: 50, AlwaysBlocks: true},
	{Suffix: "mac.com", MaxScoreWithoutRCPT: 50, AlwaysBlocks: true},
}

// Lookup returns the rule matching domain by longest suffix, and whether
// one was found. A domain matches a rule when it equals the suffix or ends
// with "."+suffix.
func Lookup(domain string) (Rule, bool) {
	lower := strings.ToLower(domain)
	var best Rule
	found := false
	for _, rule := range rules {
		if lower == rule.Suffix || strings.HasSuffix(lower, "."+rule.Suffix) {
			if !found || len(rule.Suffix) > len(best.Suffix) {
				best = rule
				found = true
			}
		}
	}
	return best, found
}

// Cap applies the Provider Rule cap (spec.md §4.1 step 5): if domain
// matches a rule and RCPT was not accepted, the score is capped at the
// rule's max_score_without_rcpt.
func Cap(domain string, score int, rcptAccepted bool) int {
	rule, ok := Lookup(domain)
	if !ok || rcptAccepted {
		return score
	}
	if score > rule.MaxScoreWithoutRCPT {
		return rule.MaxScoreWithoutRCPT
	}
	return score
}
