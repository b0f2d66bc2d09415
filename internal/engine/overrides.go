package engine

import "github.com/forgedlabs/mailverify/internal/model"

// Override is a domain-confidence override (spec.md §6: "may independently
// raise score to a floor and/or force status"), applied last, after verdict
// mapping. Supplemented from original_source's DOMAIN_CONFIDENCE_OVERRIDES,
// which spec.md references but never defines the shape of; see DESIGN.md.
type Override struct {
	MinScore    int
	ForceStatus model.Status
}

// Overrides maps a domain suffix to its confidence override. Longest
// suffix wins, same as the Provider Rule Table's lookup.
type Overrides map[string]Override

// Apply raises score to MinScore and/or forces status when domain matches
// an entry, longest suffix first. A zero-value Overrides is a no-op.
func (o Overrides) Apply(domain string, score int, status model.Status) (int, model.Status) {
	if len(o) == 0 {
		return score, status
	}
	var best Override
	var bestSuffix string
	for suffix, override := range o {
		if domain == suffix || hasDomainSuffix(domain, suffix) {
			if len(suffix) > len(bestSuffix) {
				best = override
				bestSuffix = suffix
			}
		}
	}
	if bestSuffix == "" {
		return score, status
	}
	if best.MinScore > score {
		score = best.MinScore
	}
	if best.ForceStatus != "" {
		status = best.ForceStatus
	}
	return model.Clamp(score), status
}

func hasDomainSuffix(domain, suffix string) bool {
	return len(domain) > len(suffix) && domain[len(domain)-len(suffix)-1] == '.' && domain[len(domain)-len(suffix):] == suffix
}
