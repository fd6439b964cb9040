package mailer

import (
	"context"
	"log/slog"
)

// Console logs outbound mail instead of delivering it. Used in development.
type Console struct{}

// NewConsole creates a console-backed mailer.
func NewConsole() *Console {
	return &Console{}
}

// Send writes the message to the structured log.
func (m *Console) Send(_ context.Context, msg Message) error {
	slog.Info("outbound email",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
