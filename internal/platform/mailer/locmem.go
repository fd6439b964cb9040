package mailer

import (
	"context"
	"sync"
)

// Locmem stores outbound mail in memory so tests can inspect it.
type Locmem struct {
	mu   sync.Mutex
	sent []Message
}

// NewLocmem creates an in-memory mailer.
func NewLocmem() *Locmem {
	return &Locmem{}
}

// Send appends the message to the in-memory outbox.
func (m *Locmem) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the messages delivered so far.
func (m *Locmem) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
