package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"workforce/internal/platform/config"
)

func TestBuildMessage(t *testing.T) {
	msg := string(BuildMessage("payroll@example.com", "amy@example.com", "Payslip\r\nBcc: x@evil", "Your pay is ready\nThanks"))
	assert.True(t, strings.HasPrefix(msg, "From: payroll@example.com\r\nTo: amy@example.com\r\n"))
	assert.Contains(t, msg, "Subject: Payslip  Bcc: x@evil\r\n")
	assert.Contains(t, msg, "\r\nMessage-ID: <")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nYour pay is ready\r\nThanks"))
}

func TestNewDisabledIsNoop(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false})
	assert.NoError(t, mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"))
}

func TestSendRejectsBadRecipient(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: "127.0.0.1", SMTPPort: 1})
	err := mailer.Send(context.Background(), "payroll@example.com", "not an address", "s", "b")
	assert.ErrorContains(t, err, "recipient address")
}
