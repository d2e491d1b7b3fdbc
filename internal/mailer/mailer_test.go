package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passvault/internal/config"
)

func TestOTPMessage_Registration(t *testing.T) {
	msg, err := OTPMessage(PurposeRegistration, "jan@example.com", "123456", 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "jan@example.com", msg.To)
	assert.Equal(t, "Your OTP for Registration", msg.Subject)
	assert.Contains(t, msg.HTML, "123456")
	assert.Contains(t, msg.HTML, "5 minutes")
	assert.Equal(t, "Your One-Time Password (OTP) is: 123456. It is valid for 5 minutes. Do not share this with anyone.", msg.Text)
}

func TestOTPMessage_PasswordReset(t *testing.T) {
	msg, err := OTPMessage(PurposePasswordReset, "jan@example.com", "654321", 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "Password Reset OTP", msg.Subject)
	assert.Contains(t, msg.HTML, "654321")
	assert.True(t, strings.HasPrefix(msg.Text, "Your One-Time Password (OTP) for password reset is: 654321."))
}

func TestOTPMessage_UnknownPurpose(t *testing.T) {
	_, err := OTPMessage(Purpose(99), "jan@example.com", "123456", time.Minute)
	require.Error(t, err)
}

func TestLogSender_RedactsRecipient(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sender.Send(context.Background(), Message{To: "jan.kowalski@example.com", Subject: "hi", Text: "code 1"})
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "jan.kowalski@example.com")
	assert.Contains(t, out, "j****i@example.com")
	assert.Contains(t, out, "code 1")
}

func TestNew_Drivers(t *testing.T) {
	s, err := New(config.MailConfig{Driver: "log"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = New(config.MailConfig{Driver: "smtp", Host: "smtp.example.com", Port: 587, FromAddress: "a@example.com"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	s, err = New(config.MailConfig{Driver: "mailgun", MailgunDomain: "mg.example.com", MailgunAPIKey: "key", FromAddress: "a@example.com"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MailgunSender{}, s)

	_, err = New(config.MailConfig{Driver: "mailgun"}, nil)
	require.Error(t, err)

	_, err = New(config.MailConfig{Driver: "smtp"}, nil)
	require.Error(t, err)

	_, err = New(config.MailConfig{Driver: "carrier-pigeon"}, nil)
	require.Error(t, err)
}

func TestSMTPSender_BuildMsg(t *testing.T) {
	s, err := NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Port: 587, FromName: "Passvault", FromAddress: "no-reply@example.com"})
	require.NoError(t, err)

	m, err := s.buildMsg(Message{To: "jan@example.com", Subject: "Hello", Text: "plain", HTML: "<b>rich</b>"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Hello")
	assert.Contains(t, raw, "jan@example.com")
	assert.Contains(t, raw, "text/html")

	_, err = s.buildMsg(Message{To: "not an address", Subject: "x"})
	require.Error(t, err)
}
