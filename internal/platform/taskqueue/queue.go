// Package taskqueue provides the Redis-backed background task queue.
//
// Tasks are registered by name, enqueued as JSON messages onto a Redis list
// and executed by a separate worker process. When the eager option is set
// (test profile) tasks run inline at enqueue time and never touch the broker.
package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Handler executes one task. Arguments arrive as raw JSON in enqueue order.
type Handler func(ctx context.Context, args []json.RawMessage) (any, error)

// ErrUnknownTask is returned when a message names a task that was never
// registered.
var ErrUnknownTask = errors.New("unknown task")

// ErrResultNotReady is returned by TryGet while the task is still pending.
var ErrResultNotReady = errors.New("task result not ready")

// message is the wire format pushed onto the broker list.
type message struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Args       []json.RawMessage `json:"args"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// result is the wire format stored in the result backend.
type result struct {
	Status string          `json:"status"` // "success" or "failure"
	Value  json.RawMessage `json:"value,omitempty"`
	Error  string          `json:"error,omitempty"`
}

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Queue enqueues tasks and reads back their results.
type Queue struct {
	client    *redis.Client
	queueKey  string
	eager     bool
	resultTTL time.Duration

	mu       sync.RWMutex
	handlers map[string]Handler

	// eagerMu guards results produced by inline execution.
	eagerMu      sync.Mutex
	eagerResults map[string]result
}

// Option configures a Queue.
type Option func(*Queue)

// WithEager makes Enqueue execute tasks inline instead of through the broker.
func WithEager() Option {
	return func(q *Queue) { q.eager = true }
}

// WithResultTTL overrides how long task results are retained.
func WithResultTTL(ttl time.Duration) Option {
	return func(q *Queue) { q.resultTTL = ttl }
}

// New creates a task queue on the given Redis list.
func New(client *redis.Client, queueKey string, opts ...Option) *Queue {
	q := &Queue{
		client:       client,
		queueKey:     queueKey,
		resultTTL:    24 * time.Hour,
		handlers:     make(map[string]Handler),
		eagerResults: make(map[string]result),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Register binds a handler to a task name. Registering the same name twice
// replaces the earlier handler.
func (q *Queue) Register(name string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = h
}

// handler looks up a registered handler by name.
func (q *Queue) handler(name string) (Handler, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	h, ok := q.handlers[name]
	return h, ok
}

// resultKey returns the Redis key a task result is stored under.
func (q *Queue) resultKey(id string) string {
	return fmt.Sprintf("taskqueue:result:%s", id)
}

// Enqueue schedules a task for execution and returns a handle to its result.
// In eager mode the task runs before Enqueue returns and execution errors are
// reported through the returned AsyncResult, not the error value.
func (q *Queue) Enqueue(ctx context.Context, name string, args ...any) (*AsyncResult, error) {
	rawArgs := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal task argument: %w", err)
		}
		rawArgs = append(rawArgs, data)
	}

	msg := message{
		ID:         uuid.New().String(),
		Name:       name,
		Args:       rawArgs,
		EnqueuedAt: time.Now(),
	}

	if q.eager {
		q.storeEager(msg.ID, q.execute(ctx, msg))
		return &AsyncResult{id: msg.ID, queue: q}, nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task message: %w", err)
	}
	if err := q.client.LPush(ctx, q.queueKey, data).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue task %s: %w", name, err)
	}
	return &AsyncResult{id: msg.ID, queue: q}, nil
}

// execute runs one task message and produces its result record.
func (q *Queue) execute(ctx context.Context, msg message) result {
	h, ok := q.handler(msg.Name)
	if !ok {
		return result{Status: statusFailure, Error: fmt.Sprintf("%s: %s", ErrUnknownTask, msg.Name)}
	}

	value, err := h(ctx, msg.Args)
	if err != nil {
		return result{Status: statusFailure, Error: err.Error()}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return result{Status: statusFailure, Error: fmt.Sprintf("failed to marshal task result: %v", err)}
	}
	return result{Status: statusSuccess, Value: data}
}

// storeEager records an inline execution result in memory.
func (q *Queue) storeEager(id string, res result) {
	q.eagerMu.Lock()
	defer q.eagerMu.Unlock()
	q.eagerResults[id] = res
}

// storeResult writes a result record to the Redis result backend.
func (q *Queue) storeResult(ctx context.Context, id string, res result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal task result: %w", err)
	}
	return q.client.Set(ctx, q.resultKey(id), data, q.resultTTL).Err()
}

// loadResult reads a result record. ok is false while the task is pending.
func (q *Queue) loadResult(ctx context.Context, id string) (result, bool, error) {
	if q.eager {
		q.eagerMu.Lock()
		res, ok := q.eagerResults[id]
		q.eagerMu.Unlock()
		return res, ok, nil
	}

	data, err := q.client.Get(ctx, q.resultKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return result{}, false, nil
	}
	if err != nil {
		return result{}, false, err
	}

	var res result
	if err := json.Unmarshal(data, &res); err != nil {
		return result{}, false, fmt.Errorf("failed to unmarshal task result: %w", err)
	}
	return res, true, nil
}

// AsyncResult is a handle to the eventual outcome of an enqueued task.
type AsyncResult struct {
	id    string
	queue *Queue
}

// ID returns the task identifier.
func (r *AsyncResult) ID() string {
	return r.id
}

// TryGet returns the task outcome if it is available. A failed task yields
// its execution error; a pending task yields ErrResultNotReady.
func (r *AsyncResult) TryGet(ctx context.Context, out any) error {
	res, ok, err := r.queue.loadResult(ctx, r.id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResultNotReady
	}
	if res.Status == statusFailure {
		return errors.New(res.Error)
	}
	if out == nil || len(res.Value) == 0 {
		return nil
	}
	return json.Unmarshal(res.Value, out)
}

// Get polls for the task outcome until it is available or the timeout
// elapses.
func (r *AsyncResult) Get(ctx context.Context, timeout time.Duration, out any) error {
	deadline := time.Now().Add(timeout)
	for {
		err := r.TryGet(ctx, out)
		if !errors.Is(err, ErrResultNotReady) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("task %s: %w", r.id, ErrResultNotReady)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
