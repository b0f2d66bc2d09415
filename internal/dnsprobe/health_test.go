package dnsprobe_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgedlabs/mailverify/internal/dnsprobe"
)

// fakeResolver implements dnsprobe.Resolver with canned answers keyed by
// query name, mirroring optimode-emailkit's injectable-resolver test style.
type fakeResolver struct {
	mx       map[string][]*net.MX
	txt      map[string][]string
	hosts    map[string][]string
	addrs    map[string][]string
	mxErr    error
	hostsErr error
}

func (f *fakeResolver) LookupMX(_ context.Context, domain string) ([]*net.MX, error) {
	if f.mxErr != nil {
		return nil, f.mxErr
	}
	return f.mx[domain], nil
}

func (f *fakeResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	if recs, ok := f.txt[name]; ok {
		return recs, nil
	}
	return nil, &net.DNSError{Err: "no such host", IsNotFound: true}
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if f.hostsErr != nil {
		return nil, f.hostsErr
	}
	if addrs, ok := f.hosts[host]; ok {
		return addrs, nil
	}
	return nil, &net.DNSError{Err: "no such host", IsNotFound: true}
}

func (f *fakeResolver) LookupAddr(_ context.Context, addr string) ([]string, error) {
	if names, ok := f.addrs[addr]; ok {
		return names, nil
	}
	return nil, &net.DNSError{Err: "no such host", IsNotFound: true}
}

func TestCheckHealth_MXPresentWithSPFAndDMARC(t *testing.T) {
	r := &fakeResolver{
		mx: map[string][]*net.MX{"example.com": {{Host: "mx1.example.com.", Pref: 10}}},
		txt: map[string][]string{
			"example.com":        {"v=spf1 include:_spf.example.com ~all"},
			"_dmarc.example.com": {"v=DMARC1; p=reject"},
		},
	}
	checker := &dnsprobe.Checker{Resolver: r}

	result := checker.CheckHealth(context.Background(), "example.com")
	assert.True(t, result.MXPresent)
	assert.True(t, result.DomainExists)
	assert.Equal(t, []string{"mx1.example.com"}, result.MXHosts)
	assert.True(t, result.SPFExists)
	assert.True(t, result.DMARCExists)
	assert.GreaterOrEqual(t, result.Points, 30)
}

func TestCheckHealth_NoMXFallsBackToA(t *testing.T) {
	r := &fakeResolver{
		hosts: map[string][]string{"example.com": {"93.184.216.34"}},
	}
	checker := &dnsprobe.Checker{Resolver: r}

	result := checker.CheckHealth(context.Background(), "example.com")
	assert.False(t, result.MXPresent)
	assert.True(t, result.DomainExists)
}

func TestCheckHealth_NothingResolves(t *testing.T) {
	r := &fakeResolver{}
	checker := &dnsprobe.Checker{Resolver: r}

	result := checker.CheckHealth(context.Background(), "nonexistent.invalid")
	assert.False(t, result.DomainExists)
	assert.False(t, result.MXPresent)
}

func TestCheckSecurity_StrongSPFAndAlignment(t *testing.T) {
	r := &fakeResolver{
		txt: map[string][]string{
			"example.com": {"v=spf1 include:_spf.example.com ~all"},
		},
	}
	checker := &dnsprobe.Checker{Resolver: r}
	health := dnsprobe.HealthResult{SPFExists: true, DKIMExists: true, DMARCExists: true}

	result := checker.CheckSecurity(context.Background(), "example.com", health)
	assert.True(t, result.StrongSPF)
	assert.True(t, result.DKIMDMARCAligned)
	assert.Equal(t, 8, result.Points)
}

func TestCheckSecurity_WeakSPFNoIncludeOrIP(t *testing.T) {
	r := &fakeResolver{
		txt: map[string][]string{"example.com": {"v=spf1 ~all"}},
	}
	checker := &dnsprobe.Checker{Resolver: r}
	health := dnsprobe.HealthResult{SPFExists: true}

	result := checker.CheckSecurity(context.Background(), "example.com", health)
	assert.False(t, result.StrongSPF)
	assert.Equal(t, 0, result.Points)
}
