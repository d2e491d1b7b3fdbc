package mailer

import (
	"context"
	"log/slog"

	"passvault/internal/logging"
)

// LogSender writes messages to the logger instead of delivering them. Development only.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail not delivered (log driver)",
		"to", logging.RedactEmail(msg.To),
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
