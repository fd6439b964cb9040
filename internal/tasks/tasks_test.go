package tasks

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app_backend/internal/config"
	"app_backend/internal/platform/mailer"
	"app_backend/internal/platform/taskqueue"
)

func setupQueue(t *testing.T) (*taskqueue.Queue, *mailer.Locmem) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	outbox := mailer.NewLocmem()
	emailCfg := config.Email{
		DefaultFrom:   "Backend <noreply@example.com>",
		SubjectPrefix: "[Backend] ",
	}

	q := taskqueue.New(client, "taskqueue:test", taskqueue.WithEager())
	Register(q, outbox, emailCfg)
	return q, outbox
}

func TestSampleTask(t *testing.T) {
	q, _ := setupQueue(t)

	res, err := q.Enqueue(context.Background(), Sample)
	require.NoError(t, err)

	var msg string
	require.NoError(t, res.TryGet(context.Background(), &msg))
	assert.Equal(t, "Sample task executed successfully!", msg)
}

func TestAddTask(t *testing.T) {
	q, _ := setupQueue(t)

	res, err := q.Enqueue(context.Background(), Add, 4, 6)
	require.NoError(t, err)

	var sum float64
	require.NoError(t, res.TryGet(context.Background(), &sum))
	assert.Equal(t, float64(10), sum)
}

func TestAddTask_WrongArity(t *testing.T) {
	q, _ := setupQueue(t)

	res, err := q.Enqueue(context.Background(), Add, 1)
	require.NoError(t, err)

	err = res.TryGet(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2 arguments")
}

func TestSendEmailTask(t *testing.T) {
	q, outbox := setupQueue(t)

	res, err := q.Enqueue(context.Background(), SendEmail, EmailArgs{
		To:      []string{"alice@example.com"},
		Subject: "welcome",
		Body:    "hello",
	})
	require.NoError(t, err)

	var msg string
	require.NoError(t, res.TryGet(context.Background(), &msg))
	assert.Equal(t, "email sent to 1 recipient(s)", msg)

	sent := outbox.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Backend <noreply@example.com>", sent[0].From)
	assert.Equal(t, "[Backend] welcome", sent[0].Subject)
}

func TestSendEmailTask_NoRecipients(t *testing.T) {
	q, _ := setupQueue(t)

	res, err := q.Enqueue(context.Background(), SendEmail, EmailArgs{Subject: "x"})
	require.NoError(t, err)

	err = res.TryGet(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient")
}
