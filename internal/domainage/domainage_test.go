package domainage_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgedlabs/mailverify/internal/domainage"
)

// pipeDialer returns one side of an in-memory net.Pipe and writes body on
// the other side, simulating a WHOIS server's response without touching
// the network.
func pipeDialer(body string) domainage.Dialer {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			_, _ = server.Write([]byte(body))
			server.Close()
		}()
		return client, nil
	}
}

func TestCheck_UnknownTLDSkips(t *testing.T) {
	checker := &domainage.Checker{Dial: pipeDialer("")}
	result := checker.Check(context.Background(), "example.zzz")
	assert.True(t, result.Skipped)
}

func TestCheck_ParsesCreationDate(t *testing.T) {
	old := time.Now().AddDate(-2, 0, 0).Format("2006-01-02")
	checker := &domainage.Checker{Dial: pipeDialer("Domain Name: EXAMPLE.COM\nCreation Date: " + old + "T00:00:00Z\n")}

	result := checker.Check(context.Background(), "example.com")
	require.False(t, result.Skipped)
	assert.Greater(t, result.AgeMonths, 12.0)
	assert.Equal(t, 10, result.Points)
}

func TestCheck_RecentDomainPenalized(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -5).Format("2006-01-02")
	checker := &domainage.Checker{Dial: pipeDialer("Created: " + recent + "\n")}

	result := checker.Check(context.Background(), "example.com")
	require.False(t, result.Skipped)
	assert.Equal(t, -15, result.Points)
}

func TestCheck_NoParsableDateSkips(t *testing.T) {
	checker := &domainage.Checker{Dial: pipeDialer("No match here\n")}
	result := checker.Check(context.Background(), "example.com")
	assert.True(t, result.Skipped)
}

func TestCheck_DialErrorSkips(t *testing.T) {
	checker := &domainage.Checker{Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, assert.AnError
	}}
	result := checker.Check(context.Background(), "example.com")
	assert.True(t, result.Skipped)
}
