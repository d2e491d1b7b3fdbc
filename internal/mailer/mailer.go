// Package mailer delivers transactional email through SMTP, Mailgun or the log.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"passvault/internal/config"
)

// Message is a single outbound email. Text is the plain-text alternative of HTML.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the Sender named by cfg.Driver: "smtp", "mailgun" or "log".
func New(cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPSender(cfg)
	case "mailgun":
		return NewMailgunSender(cfg)
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}
