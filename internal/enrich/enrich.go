// Package enrich defines the external-presence adapter (spec.md §9): an
// optional, pluggable collaborator consulted once per address whose output
// is merged into the Verdict under details.internet_check. Any error it
// returns is captured as a payload, never surfaced as a score change.
package enrich

import "context"

// Adapter enriches an address with external signal (breach databases,
// social presence, reputation services). A nil Adapter or the NoOp
// implementation disables enrichment entirely.
type Adapter interface {
	Enrich(ctx context.Context, address string, enableHIBP bool) (map[string]any, error)
}

// NoOp is the default Adapter: it does nothing and is always nil-error,
// matching spec.md §9's "an implementation may be a no-op".
type NoOp struct{}

func (NoOp) Enrich(ctx context.Context, address string, enableHIBP bool) (map[string]any, error) {
	return nil, nil
}

// Run calls adapter.Enrich and converts any error into the
// {"error": "..."} payload shape spec.md §6 requires, never returning an
// error itself.
func Run(ctx context.Context, adapter Adapter, address string, enableHIBP bool) map[string]any {
	if adapter == nil {
		return nil
	}
	payload, err := adapter.Enrich(ctx, address, enableHIBP)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return payload
}
