package smtpprobe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgedlabs/mailverify/internal/smtpprobe"
)

func dialSession(t *testing.T, responses map[string]string) (*smtpprobe.Prober, *smtpprobe.Conn) {
	t.Helper()
	prober := &smtpprobe.Prober{
		Dial:         dialerFor("220 mx.example.com ESMTP", responses),
		HeloHostname: "probe.example.com",
		SenderDomain: "example.com",
	}
	session, conn := prober.RunSession(context.Background(), []string{"mx.example.com"}, "example.com")
	require.False(t, session.Skipped)
	require.NotNil(t, conn)
	return prober, conn
}

func TestRunRCPT_Accepted(t *testing.T) {
	prober, conn := dialSession(t, basicResponses())
	defer conn.Close()

	result := prober.RunRCPT(context.Background(), conn, "user@example.com")
	assert.True(t, result.Accepted)
	assert.Equal(t, 250, result.ResponseCode)
}

func TestRunRCPT_HardFailure(t *testing.T) {
	responses := basicResponses()
	responses["RCPT TO"] = "550 5.1.1 User unknown"
	prober, conn := dialSession(t, responses)
	defer conn.Close()

	result := prober.RunRCPT(context.Background(), conn, "nobody@example.com")
	assert.True(t, result.Rejected)
	assert.True(t, result.HardFailure)
	assert.Equal(t, 550, result.ResponseCode)
	assert.True(t, smtpprobe.UnknownMailbox(result.ResponseMessage))
}

func TestRunRCPT_SoftFailure(t *testing.T) {
	responses := basicResponses()
	responses["RCPT TO"] = "450 4.2.1 Mailbox temporarily unavailable"
	prober, conn := dialSession(t, responses)
	defer conn.Close()

	result := prober.RunRCPT(context.Background(), conn, "user@example.com")
	assert.True(t, result.SoftFailure)
}

func TestRunRCPT_MailFromRejected(t *testing.T) {
	responses := basicResponses()
	responses["MAIL FROM"] = "550 relaying denied"
	prober, conn := dialSession(t, responses)
	defer conn.Close()

	result := prober.RunRCPT(context.Background(), conn, "user@example.com")
	assert.Equal(t, "MAIL FROM rejected", result.Error)
}

func TestUnknownMailbox(t *testing.T) {
	assert.True(t, smtpprobe.UnknownMailbox("550 5.1.1 User unknown"))
	assert.True(t, smtpprobe.UnknownMailbox("No such User Unknown here"))
	assert.False(t, smtpprobe.UnknownMailbox("relaying denied"))
}
