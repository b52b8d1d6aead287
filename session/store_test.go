package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", 1, time.Hour))
	require.NoError(t, s.Save(ctx, "b", 2, 2*time.Hour))

	uid, ok, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(1), uid)

	now = now.Add(90 * time.Minute)
	_, ok, err = s.Load(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Saving sweeps whatever else has expired.
	now = now.Add(time.Hour)
	require.NoError(t, s.Save(ctx, "c", 3, time.Hour))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_DeleteUnknown(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Delete(context.Background(), "missing"))
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return NewRedisStore(rc), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sid", 9, time.Minute))
	assert.Equal(t, "9", mustGet(t, mr, "session:sid"))
	assert.Equal(t, time.Minute, mr.TTL("session:sid"))

	uid, ok, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(9), uid)
}

func TestRedisStore_Expiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sid", 9, time.Minute))
	mr.FastForward(59 * time.Second)
	_, ok, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, err = s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_DeleteIsIdempotent(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sid", 9, time.Minute))
	require.NoError(t, s.Delete(ctx, "sid"))
	assert.False(t, mr.Exists("session:sid"))

	_, ok, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Delete(ctx, "sid"))
	assert.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestRedisStore_ForeignValueIsAbsent(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("session:sid", "not-a-number"))

	_, ok, err := s.Load(context.Background(), "sid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rc.Close() })
	s := NewRedisStore(rc)
	mr.Close()

	_, ok, err := s.Load(context.Background(), "sid")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestManager_WithRedisStore(t *testing.T) {
	s, mr := newRedisStore(t)
	m, err := NewManager(s, []byte("secret"))
	require.NoError(t, err)
	ctx := context.Background()

	token, err := m.Create(ctx, 4)
	require.NoError(t, err)
	uid, ok := m.Resolve(ctx, token)
	require.True(t, ok)
	assert.Equal(t, uint(4), uid)
	assert.Len(t, mr.Keys(), 1)

	require.NoError(t, m.Destroy(ctx, token))
	_, ok = m.Resolve(ctx, token)
	assert.False(t, ok)
	assert.Empty(t, mr.Keys())
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
