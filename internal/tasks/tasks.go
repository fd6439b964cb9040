// Package tasks defines the application's background tasks and registers
// them with the task queue. サーバとワーカーの両方が同じ登録を共有する。
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"app_backend/internal/config"
	"app_backend/internal/platform/mailer"
	"app_backend/internal/platform/taskqueue"
)

// Task names used by Enqueue callers.
const (
	Sample    = "sample_task"
	Add       = "add"
	SendEmail = "send_email"
)

// Register installs every application task on the queue.
func Register(q *taskqueue.Queue, m mailer.Mailer, emailCfg config.Email) {
	q.Register(Sample, sampleTask)
	q.Register(Add, addTask)
	q.Register(SendEmail, sendEmailTask(m, emailCfg))
}

// sampleTask is a no-argument smoke-test task.
func sampleTask(_ context.Context, _ []json.RawMessage) (any, error) {
	return "Sample task executed successfully!", nil
}

// addTask sums its two numeric arguments.
func addTask(_ context.Context, args []json.RawMessage) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("add expects 2 arguments, got %d", len(args))
	}
	var x, y float64
	if err := json.Unmarshal(args[0], &x); err != nil {
		return nil, fmt.Errorf("invalid first argument: %w", err)
	}
	if err := json.Unmarshal(args[1], &y); err != nil {
		return nil, fmt.Errorf("invalid second argument: %w", err)
	}
	return x + y, nil
}

// EmailArgs is the payload of the send_email task.
type EmailArgs struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// sendEmailTask delivers one email through the configured backend. The
// settings' subject prefix and default sender are applied here so enqueue
// callers only ever provide the bare message.
func sendEmailTask(m mailer.Mailer, emailCfg config.Email) taskqueue.Handler {
	return func(ctx context.Context, args []json.RawMessage) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("send_email expects 1 argument, got %d", len(args))
		}
		var payload EmailArgs
		if err := json.Unmarshal(args[0], &payload); err != nil {
			return nil, fmt.Errorf("invalid email payload: %w", err)
		}
		if len(payload.To) == 0 {
			return nil, fmt.Errorf("send_email requires at least one recipient")
		}

		msg := mailer.Message{
			From:    emailCfg.DefaultFrom,
			To:      payload.To,
			Subject: emailCfg.SubjectPrefix + payload.Subject,
			Body:    payload.Body,
		}
		if err := m.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to send email: %w", err)
		}
		return fmt.Sprintf("email sent to %d recipient(s)", len(payload.To)), nil
	}
}
