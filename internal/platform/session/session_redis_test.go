package session

import (
	"context"
	"testing"
	"time"

	"myblog/internal/feature/auth/domain/entity"
	"myblog/internal/feature/auth/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func newSession(id string, userID uint, createdAgo, expiresIn time.Duration) *entity.Session {
	now := time.Now()
	return &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: now.Add(-createdAgo),
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestSessionRedis_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session *entity.Session
		wantErr bool
	}{
		{"success", newSession("sid-1", 1, 0, time.Hour), false},
		{"already expired", newSession("sid-2", 1, 0, -time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, mr := setupTestRedis(t)
			repo := NewSessionRedis(client, "session")

			err := repo.Create(context.Background(), tt.session)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, mr.Exists(repo.sessionKey(tt.session.ID)))
				return
			}

			require.NoError(t, err)
			assert.True(t, mr.Exists(repo.sessionKey(tt.session.ID)))
			assert.Greater(t, mr.TTL(repo.sessionKey(tt.session.ID)), 59*time.Minute)

			members, err := mr.ZMembers(repo.userSessionsKey(1))
			require.NoError(t, err)
			assert.Equal(t, []string{"sid-1"}, members)
		})
	}
}

func TestSessionRedis_FindByID(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("sid-1", 7, 0, time.Hour)))

	found, err := repo.FindByID(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, uint(7), found.UserID)
	assert.Equal(t, "test-agent", found.UserAgent)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_FindByUserID_OrdersAndPrunes(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("newer", 1, time.Minute, time.Hour)))
	require.NoError(t, repo.Create(ctx, newSession("older", 1, time.Hour, time.Hour)))
	require.NoError(t, repo.Create(ctx, newSession("gone", 1, 2*time.Hour, time.Hour)))
	require.NoError(t, repo.Create(ctx, newSession("other", 2, 0, time.Hour)))

	// Simulate Redis expiring the key before the index is cleaned.
	mr.Del(repo.sessionKey("gone"))

	sessions, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "older", sessions[0].ID)
	assert.Equal(t, "newer", sessions[1].ID)

	members, err := mr.ZMembers(repo.userSessionsKey(1))
	require.NoError(t, err)
	assert.NotContains(t, members, "gone")

	sessions, err = repo.FindByUserID(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRedis_Revoke(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("a", 1, 0, time.Hour)))
	require.NoError(t, repo.Create(ctx, newSession("b", 1, 0, time.Hour)))

	require.NoError(t, repo.Revoke(ctx, "a"))

	found, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found.IsRevoked())

	count, err := repo.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, repo.Revoke(ctx, "missing"), usecase.ErrSessionNotFound)
}

func TestSessionRedis_DeleteOldestByUserID(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("oldest", 1, 2*time.Hour, time.Hour)))
	require.NoError(t, repo.Create(ctx, newSession("newest", 1, time.Hour, time.Hour)))

	require.NoError(t, repo.DeleteOldestByUserID(ctx, 1))

	_, err := repo.FindByID(ctx, "oldest")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)

	found, err := repo.FindByID(ctx, "newest")
	require.NoError(t, err)
	assert.Equal(t, "newest", found.ID)

	assert.NoError(t, repo.DeleteOldestByUserID(ctx, 42))
}

func TestSessionRedis_DeleteExpired(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")

	deleted, err := repo.DeleteExpired(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestSessionRedis_KeyGeneration(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "test-prefix")

	assert.Equal(t, "test-prefix:session-id", repo.sessionKey("session-id"))
	assert.Equal(t, "test-prefix:user:123", repo.userSessionsKey(123))
}
