// Package mailer provides the email backends selected by the settings
// profile: console output for development, an in-memory sink for tests and
// the Mailgun API for production.
package mailer

import (
	"context"
	"fmt"

	"app_backend/internal/config"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer sends email through a configured backend.
type Mailer interface {
	// Send delivers a single message. The configured subject prefix has
	// already been applied by the caller-facing helpers.
	Send(ctx context.Context, msg Message) error
}

// New constructs the mailer selected by the settings.
func New(settings *config.Settings) (Mailer, error) {
	switch settings.Email.Backend {
	case "console":
		return NewConsole(), nil
	case "locmem":
		return NewLocmem(), nil
	case "mailgun":
		return NewMailgun(settings.Email)
	default:
		return nil, fmt.Errorf("unknown email backend %q", settings.Email.Backend)
	}
}
