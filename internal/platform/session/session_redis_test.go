package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app_backend/internal/feature/auth/domain"
	"app_backend/internal/feature/auth/domain/entity"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

// createTestSession creates a session entity for testing.
func createTestSession(id string, userID uint, expiresIn time.Duration) *entity.Session {
	now := time.Now()
	return &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestNewSessionRedis(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionRedis(client, "session")

	assert.NotNil(t, store, "store is nil")
	assert.NotNil(t, store.client, "client is nil")
	assert.Equal(t, "session", store.prefix)
}

func TestSessionRedis_Create(t *testing.T) {
	tests := []struct {
		name    string
		session *entity.Session
		wantErr bool
	}{
		{
			name:    "success: create session",
			session: createTestSession("session-001", 1, 7*24*time.Hour),
			wantErr: false,
		},
		{
			name:    "failure: expired session",
			session: createTestSession("expired-session", 1, -1*time.Hour),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setupTestRedis(t)
			store := NewSessionRedis(client, "session")

			err := store.Create(context.Background(), tt.session)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)

				found, err := store.FindByID(context.Background(), tt.session.ID)
				require.NoError(t, err)
				assert.Equal(t, tt.session.UserID, found.UserID)
			}
		})
	}
}

func TestSessionRedis_FindByID(t *testing.T) {
	t.Run("missing session", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		store := NewSessionRedis(client, "session")

		_, err := store.FindByID(context.Background(), "does-not-exist")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("expired session is gone from the store", func(t *testing.T) {
		client, mr := setupTestRedis(t)
		store := NewSessionRedis(client, "session")

		sess := createTestSession("short-lived", 1, time.Minute)
		require.NoError(t, store.Create(context.Background(), sess))

		// Redis TTL handles expiry
		mr.FastForward(2 * time.Minute)

		_, err := store.FindByID(context.Background(), "short-lived")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionRedis_Revoke(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionRedis(client, "session")

	sess := createTestSession("to-revoke", 1, time.Hour)
	require.NoError(t, store.Create(context.Background(), sess))

	require.NoError(t, store.Revoke(context.Background(), "to-revoke"))

	found, err := store.FindByID(context.Background(), "to-revoke")
	require.NoError(t, err, "revoked sessions stay readable for auditing")
	assert.True(t, found.IsRevoked())
	assert.False(t, found.IsValid())
}

func TestSessionRedis_FindByUserID(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionRedis(client, "session")

	require.NoError(t, store.Create(context.Background(), createTestSession("s1", 7, time.Hour)))
	require.NoError(t, store.Create(context.Background(), createTestSession("s2", 7, time.Hour)))
	require.NoError(t, store.Create(context.Background(), createTestSession("other", 8, time.Hour)))
	require.NoError(t, store.Revoke(context.Background(), "s2"))

	sessions, err := store.FindByUserID(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, sessions, 1, "revoked sessions are filtered out")
	assert.Equal(t, "s1", sessions[0].ID)
}

func TestSessionRedis_RevokeAllByUserID(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionRedis(client, "session")

	require.NoError(t, store.Create(context.Background(), createTestSession("a1", 9, time.Hour)))
	require.NoError(t, store.Create(context.Background(), createTestSession("a2", 9, time.Hour)))

	require.NoError(t, store.RevokeAllByUserID(context.Background(), 9))

	sessions, err := store.FindByUserID(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRedis_NilClient(t *testing.T) {
	// クライアントなしでは各操作がパニックせずエラーを返す
	store := NewSessionRedis(nil, "session")

	err := store.Create(context.Background(), createTestSession("n1", 1, time.Hour))
	assert.ErrorIs(t, err, errNoClient)

	_, err = store.FindByID(context.Background(), "n1")
	assert.ErrorIs(t, err, errNoClient)

	_, err = store.FindByUserID(context.Background(), 1)
	assert.ErrorIs(t, err, errNoClient)

	err = store.Revoke(context.Background(), "n1")
	assert.ErrorIs(t, err, errNoClient)

	err = store.RevokeAllByUserID(context.Background(), 1)
	assert.ErrorIs(t, err, errNoClient)
}
