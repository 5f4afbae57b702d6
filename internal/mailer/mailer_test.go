package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal_reservations/internal/config"
)

func TestNewPicksImplementation(t *testing.T) {
	_, isLog := New(config.SMTPConfig{}).(LogMailer)
	assert.True(t, isLog)

	_, isSMTP := New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}).(*SMTPMailer)
	assert.True(t, isSMTP)
}

func TestBuildMessage(t *testing.T) {
	raw := string(buildMessage("no-reply@example.com", Message{
		To:      "ana@example.com",
		Subject: "Recordatorio",
		Text:    "linea 1\nlinea 2",
	}))

	assert.True(t, strings.HasPrefix(raw, "From: no-reply@example.com\r\n"))
	assert.Contains(t, raw, "To: ana@example.com\r\n")
	assert.Contains(t, raw, "Subject: Recordatorio\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nlinea 1\r\nlinea 2"))
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&SMTPMailer{cfg: config.SMTPConfig{Host: "127.0.0.1", Port: 1}}).Send(ctx, Message{To: "x@example.com"})
	require.ErrorIs(t, err, context.Canceled)
}
