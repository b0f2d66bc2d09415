// Package httpcheck implements the Web-Presence Probe (spec.md §4.8): a
// single bounded HEAD/GET against a candidate web origin, HTTPS then HTTP.
package httpcheck

import (
	"context"
	"net/http"
	"time"
)

// Timeout is the 5s bound spec.md §4.8 mandates, following redirects.
const Timeout = 5 * time.Second

// Client is injected so tests can avoid real network calls, mirroring the
// rest of the probe package's dependency-injection convention.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// Checker runs the Web-Presence Probe.
type Checker struct {
	Client Client
}

// NewChecker returns a Checker backed by a real *http.Client bounded to
// Timeout, following redirects (the default http.Client behaviour).
func NewChecker() *Checker {
	return &Checker{Client: &http.Client{Timeout: Timeout}}
}

// Result is the Web-Presence Probe output, spec.md §4.8.
type Result struct {
	Reachable  bool
	StatusCode int
	Points     int
}

// Check tries HTTPS then HTTP against the bare domain. Reachable -> +5;
// HTTP 200 in addition -> +5 more; unreachable on both -> -10.
func (c *Checker) Check(ctx context.Context, domain string) Result {
	for _, scheme := range []string{"https", "http"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+domain, nil)
		if err != nil {
			continue
		}
		resp, err := c.Client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		result := Result{Reachable: true, StatusCode: resp.StatusCode, Points: 5}
		if resp.StatusCode == http.StatusOK {
			result.Points += 5
		}
		return result
	}
	return Result{Points: -10}
}
