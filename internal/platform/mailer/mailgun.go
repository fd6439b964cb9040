package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app_backend/internal/config"
	platformhttp "app_backend/internal/platform/http"
)

// Mailgun delivers mail through the Mailgun HTTP API.
type Mailgun struct {
	client *http.Client
	apiURL string
	domain string
	apiKey string
}

// NewMailgun creates a Mailgun-backed mailer from the email settings.
func NewMailgun(cfg config.Email) (*Mailgun, error) {
	if cfg.MailgunAPIKey == "" || cfg.MailgunDomain == "" {
		return nil, errors.New("mailgun backend requires EMAIL_MAILGUN_API_KEY and EMAIL_MAILGUN_DOMAIN")
	}
	return &Mailgun{
		client: platformhttp.NewHTTPClient(10 * time.Second),
		apiURL: strings.TrimRight(cfg.MailgunAPIURL, "/"),
		domain: cfg.MailgunDomain,
		apiKey: cfg.MailgunAPIKey,
	}, nil
}

// Send posts the message to Mailgun's messages endpoint.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("from", msg.From)
	for _, to := range msg.To {
		form.Add("to", to)
	}
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Body)

	endpoint := fmt.Sprintf("%s/%s/messages", m.apiURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.apiKey)

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailgun request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("mailgun returned %d: %s", res.StatusCode, body)
	}
	return nil
}
