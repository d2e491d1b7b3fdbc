package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v5"
	"github.com/samber/oops"

	"passvault/internal/config"
)

type MailgunSender struct {
	client  mailgun.Mailgun
	domain  string
	from    string
	timeout time.Duration
}

func NewMailgunSender(cfg config.MailConfig) (*MailgunSender, error) {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		return nil, errors.New("mail.mailgun_domain and mail.mailgun_api_key are required for the mailgun driver")
	}
	return &MailgunSender{
		client:  mailgun.NewMailgun(cfg.MailgunAPIKey),
		domain:  cfg.MailgunDomain,
		from:    fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		timeout: cfg.Timeout,
	}, nil
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	message := mailgun.NewMessage(s.domain, s.from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHTML(msg.HTML)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("domain", s.domain).Wrap(err)
	}
	return nil
}
