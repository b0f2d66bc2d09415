package smtpprobe_test

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgedlabs/mailverify/internal/smtpprobe"
)

// mockSMTPServer simulates a minimal SMTP server on a net.Pipe connection,
// grounded on optimode-emailkit's internal/smtppool mock server shape.
func mockSMTPServer(server net.Conn, banner string, responses map[string]string) {
	defer func() { _ = server.Close() }()
	_, _ = fmt.Fprintf(server, "%s\r\n", banner)

	buf := make([]byte, 4096)
	for {
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])

		matched := false
		for prefix, resp := range responses {
			if len(cmd) >= len(prefix) && cmd[:len(prefix)] == prefix {
				_, _ = fmt.Fprintf(server, "%s\r\n", resp)
				matched = true
				break
			}
		}
		if !matched {
			_, _ = fmt.Fprintf(server, "500 unrecognized\r\n")
		}
		if len(cmd) >= 4 && cmd[:4] == "QUIT" {
			return
		}
	}
}

func dialerFor(banner string, responses map[string]string) smtpprobe.Dialer {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		client, server := net.Pipe()
		go mockSMTPServer(server, banner, responses)
		return client, nil
	}
}

func basicResponses() map[string]string {
	return map[string]string{
		"EHLO":      "250-PIPELINING\r\n250-8BITMIME\r\n250 SIZE 1000000",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "250 OK",
		"QUIT":      "221 Bye",
		"NOOP":      "250 OK",
		"RSET":      "250 OK",
	}
}

func TestRunSession_ValidGreetingAndEHLO(t *testing.T) {
	prober := &smtpprobe.Prober{
		Dial:         dialerFor("220 mx.example.com ESMTP", basicResponses()),
		HeloHostname: "probe.example.com",
		SenderDomain: "example.com",
	}

	session, conn := prober.RunSession(context.Background(), []string{"mx.example.com"}, "example.com")
	require.NotNil(t, conn)
	defer conn.Close()

	assert.False(t, session.Skipped)
	assert.True(t, session.Port25Open)
	assert.True(t, session.Greeting.Valid)
	assert.True(t, session.EHLOExtensions["PIPELINING"])
	assert.Equal(t, 20, session.Points) // +10 port open, +10 valid greeting
}

func TestRunSession_InvalidGreeting(t *testing.T) {
	prober := &smtpprobe.Prober{
		Dial:         dialerFor("554 go away", basicResponses()),
		HeloHostname: "probe.example.com",
		SenderDomain: "example.com",
	}

	session, conn := prober.RunSession(context.Background(), []string{"mx.example.com"}, "example.com")
	require.NotNil(t, conn)
	defer conn.Close()

	assert.False(t, session.Greeting.Valid)
	assert.Equal(t, 0, session.Points) // +10 port open, -10 invalid greeting
}

func TestRunSession_BlockedProviderSkipsEntirely(t *testing.T) {
	prober := &smtpprobe.Prober{
		Dial:         dialerFor("220 mx ESMTP", basicResponses()),
		HeloHostname: "probe.example.com",
		SenderDomain: "example.com",
	}

	session, conn := prober.RunSession(context.Background(), []string{"gmail-smtp-in.l.google.com"}, "gmail.com")
	assert.Nil(t, conn)
	assert.True(t, session.Skipped)
}

func TestRunSession_NoMXHostsSkips(t *testing.T) {
	prober := &smtpprobe.Prober{
		Dial:         dialerFor("220 mx ESMTP", basicResponses()),
		HeloHostname: "probe.example.com",
		SenderDomain: "example.com",
	}

	session, conn := prober.RunSession(context.Background(), nil, "example.com")
	assert.Nil(t, conn)
	assert.True(t, session.Skipped)
}

func TestRunSession_EHLORejectedFallsBackToHELO(t *testing.T) {
	responses := basicResponses()
	responses["EHLO"] = "550 command not recognized"
	responses["HELO"] = "250 mx.example.com Hello"

	prober := &smtpprobe.Prober{
		Dial:         dialerFor("220 mx.example.com ESMTP", responses),
		HeloHostname: "probe.example.com",
		SenderDomain: "example.com",
	}

	session, conn := prober.RunSession(context.Background(), []string{"mx.example.com"}, "example.com")
	require.NotNil(t, conn)
	defer conn.Close()

	assert.Empty(t, session.Error)
	assert.False(t, session.TLSUpgraded) // HELO advertises no extensions, so STARTTLS is never attempted
	assert.Empty(t, session.EHLOExtensions)
}

func TestRunSession_EHLOAndHELOBothRejectedFails(t *testing.T) {
	responses := basicResponses()
	responses["EHLO"] = "550 command not recognized"
	responses["HELO"] = "550 go away"

	prober := &smtpprobe.Prober{
		Dial:         dialerFor("220 mx.example.com ESMTP", responses),
		HeloHostname: "probe.example.com",
		SenderDomain: "example.com",
	}

	session, conn := prober.RunSession(context.Background(), []string{"mx.example.com"}, "example.com")
	assert.Nil(t, conn)
	assert.NotEmpty(t, session.Error)
}

func TestRunSession_ConnectFailureFallsThroughHosts(t *testing.T) {
	calls := 0
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("connection refused")
		}
		client, server := net.Pipe()
		go mockSMTPServer(server, "220 mx2 ESMTP", basicResponses())
		return client, nil
	}
	prober := &smtpprobe.Prober{Dial: dial, HeloHostname: "probe.example.com", SenderDomain: "example.com"}

	session, conn := prober.RunSession(context.Background(), []string{"mx1.example.com", "mx2.example.com"}, "example.com")
	require.NotNil(t, conn)
	defer conn.Close()

	assert.Equal(t, "mx2.example.com", session.MXUsed)
	assert.Equal(t, 2, calls)
}

