package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/model"
)

func newSession(userID uint) *Session {
	return &Session{
		ID:        uuid.NewString(),
		User:      model.User{ID: userID, Email: "john.doe@email.com", FirstName: "John", LastName: "Doe", Role: model.RoleUser},
		CreatedAt: time.Now(),
	}
}

func exerciseStore(t *testing.T, store SessionStore) {
	ctx := context.Background()

	first, second, other := newSession(2), newSession(2), newSession(3)
	for _, s := range []*Session{first, second, other} {
		require.NoError(t, store.Save(ctx, s, time.Hour))
	}

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "john.doe@email.com", got.User.Email)
	assert.Equal(t, model.RoleUser, got.User.Role)

	require.NoError(t, store.Delete(ctx, first.ID))
	_, err = store.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, store.Delete(ctx, first.ID), "deleting twice is harmless")

	require.NoError(t, store.RevokeUser(ctx, 2))
	_, err = store.Get(ctx, second.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(ctx, other.ID)
	assert.NoError(t, err, "other users keep their sessions")
}

func TestMemorySessionStore(t *testing.T) {
	exerciseStore(t, NewMemorySessionStore())
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	s := newSession(2)
	require.NoError(t, store.Save(context.Background(), s, time.Minute))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore_SaveDropsExpiredSessions(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, newSession(2), time.Minute))
	}
	kept := newSession(3)
	require.NoError(t, store.Save(ctx, kept, time.Hour))

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, newSession(4), time.Hour))

	assert.Len(t, store.sessions, 2)
	_, err := store.Get(ctx, kept.ID)
	assert.NoError(t, err)
}

func newRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisSessionStore(t *testing.T) {
	client, _ := newRedisClient(t)
	exerciseStore(t, NewRedisSessionStore(client))
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	client, mr := newRedisClient(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	s := newSession(2)
	require.NoError(t, store.Save(ctx, s, time.Minute))
	assert.True(t, mr.Exists(sessionKey(s.ID)))
	assert.Equal(t, time.Minute, mr.TTL(sessionKey(s.ID)))

	members, err := mr.Members(userSessionsKey(2))
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, members)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStore_CorruptPayload(t *testing.T) {
	client, mr := newRedisClient(t)
	require.NoError(t, mr.Set(sessionKey("broken"), "{not json"))

	_, err := NewRedisSessionStore(client).Get(context.Background(), "broken")
	assert.ErrorContains(t, err, "unmarshal session")
}
