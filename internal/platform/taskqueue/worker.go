package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Worker consumes task messages from the broker list and executes them.
type Worker struct {
	queue  *Queue
	logger *slog.Logger
}

// NewWorker creates a worker bound to a queue.
func NewWorker(queue *Queue, logger *slog.Logger) *Worker {
	return &Worker{queue: queue, logger: logger}
}

// Run blocks consuming tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("task worker started", "queue", w.queue.queueKey)
	for {
		if err := w.runOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info("task worker stopped")
				return nil
			}
			w.logger.Error("task worker poll failed", "error", err)
			// 接続障害時の連続エラーを抑制する
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

// runOnce pops and processes at most one message.
func (w *Worker) runOnce(ctx context.Context) error {
	vals, err := w.queue.client.BLPop(ctx, 5*time.Second, w.queue.queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(vals) != 2 {
		return fmt.Errorf("unexpected BLPOP reply length %d", len(vals))
	}

	var msg message
	if err := json.Unmarshal([]byte(vals[1]), &msg); err != nil {
		w.logger.Error("discarding malformed task message", "error", err)
		return nil
	}

	w.process(ctx, msg)
	return nil
}

// process executes one message and stores its result. A panicking handler
// is recorded as a failure instead of taking down the worker.
func (w *Worker) process(ctx context.Context, msg message) {
	start := time.Now()
	res := w.safeExecute(ctx, msg)

	if err := w.queue.storeResult(ctx, msg.ID, res); err != nil {
		w.logger.Error("failed to store task result", "task", msg.Name, "id", msg.ID, "error", err)
	}

	if res.Status == statusSuccess {
		w.logger.Info("task succeeded", "task", msg.Name, "id", msg.ID, "duration", time.Since(start))
	} else {
		w.logger.Error("task failed", "task", msg.Name, "id", msg.ID, "error", res.Error)
	}
}

func (w *Worker) safeExecute(ctx context.Context, msg message) (res result) {
	defer func() {
		if r := recover(); r != nil {
			res = result{Status: statusFailure, Error: fmt.Sprintf("task panicked: %v", r)}
		}
	}()
	return w.queue.execute(ctx, msg)
}
