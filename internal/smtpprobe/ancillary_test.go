package smtpprobe_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgedlabs/mailverify/internal/smtpprobe"
)

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "greylist", smtpprobe.ClassifyError("greylisted, try again later").Category)
	assert.Equal(t, "rate_limit", smtpprobe.ClassifyError("rate limit exceeded").Category)
	assert.Equal(t, "dead_server", smtpprobe.ClassifyError("i/o timeout").Category)
	assert.Equal(t, "", smtpprobe.ClassifyError("").Category)
	assert.Equal(t, 0, smtpprobe.ClassifyError("").Points)
}

func TestCheckLatencyFingerprint(t *testing.T) {
	assert.Equal(t, -10, smtpprobe.CheckLatencyFingerprint(0.1).Points)
	assert.Equal(t, 8, smtpprobe.CheckLatencyFingerprint(2).Points)
	assert.Equal(t, 0, smtpprobe.CheckLatencyFingerprint(5).Points)
	assert.Equal(t, -5, smtpprobe.CheckLatencyFingerprint(20).Points)
}

func TestCheckQuitBehavior(t *testing.T) {
	assert.Equal(t, 4, smtpprobe.CheckQuitBehavior(221).Points)
	assert.Equal(t, -4, smtpprobe.CheckQuitBehavior(0).Points)
}

func TestCheckBanner(t *testing.T) {
	assert.Equal(t, "known_provider", smtpprobe.CheckBanner("220 mail.example.com ESMTP Postfix").Category)
	assert.Equal(t, "suspicious", smtpprobe.CheckBanner("220 honeypot test server").Category)
	assert.Equal(t, "degenerate", smtpprobe.CheckBanner("").Category)
	assert.Equal(t, "unrecognized", smtpprobe.CheckBanner("220 mx.somehost.tld ready").Category)
}

func TestCheckProviderFingerprint_CountsExtensions(t *testing.T) {
	prober := &smtpprobe.Prober{}
	extensions := map[string]bool{"PIPELINING": true, "8BITMIME": true, "SIZE": true}

	result := prober.CheckProviderFingerprint(nil, extensions)
	assert.Equal(t, 3, result.ExtensionCount)
	assert.Equal(t, 10, result.Points)
}

func TestCheckProviderFingerprint_NoopFailurePenalized(t *testing.T) {
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			_, _ = server.Write([]byte("220 mx ESMTP\r\n"))
			buf := make([]byte, 4096)
			_, _ = server.Read(buf) // consume EHLO
			_, _ = server.Write([]byte("250 OK\r\n"))
			_ = server.Close() // closes before NOOP gets a reply
		}()
		return client, nil
	}
	prober := &smtpprobe.Prober{Dial: dial, HeloHostname: "probe.example.com", SenderDomain: "example.com"}
	_, conn := prober.RunSession(context.Background(), []string{"mx.example.com"}, "example.com")
	defer conn.Close()

	result := prober.CheckProviderFingerprint(conn, map[string]bool{})
	assert.True(t, result.NoopFailed)
	assert.Equal(t, -3, result.Points)
}
