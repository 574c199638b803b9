package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newMemoryWithClock(ttl time.Duration) (*Memory, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(ttl)
	m.now = clock.now
	return m, clock
}

func TestKey(t *testing.T) {
	assert.Equal(t, "plan:p1:p1-g1-2:svg", Key("p1", "p1-g1-2", "svg"))
}

func TestMemoryGetSet(t *testing.T) {
	m, _ := newMemoryWithClock(time.Minute)
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryExpires(t *testing.T) {
	m, clock := newMemoryWithClock(time.Minute)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v")))

	clock.t = clock.t.Add(59 * time.Second)
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	clock.t = clock.t.Add(2 * time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, m.entries)
}

func TestMemoryCleanup(t *testing.T) {
	m, clock := newMemoryWithClock(time.Minute)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "old", []byte("1")))
	clock.t = clock.t.Add(30 * time.Second)
	require.NoError(t, m.Set(ctx, "new", []byte("2")))

	clock.t = clock.t.Add(45 * time.Second)
	m.Cleanup()

	assert.Len(t, m.entries, 1)
	_, ok, _ := m.Get(ctx, "new")
	assert.True(t, ok)
}

func TestNewMemoryDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewMemory(0).ttl)
}

func TestRedisSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewRedisWithClient(client, time.Minute)
	defer r.Close()

	_, ok, err := r.Get(context.Background(), Key("p", "p-g1-1", "svg"))
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, r.Set(context.Background(), Key("p", "p-g1-1", "svg"), []byte("x")))
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r := NewRedis(addr, time.Minute)
	defer r.Close()
	ctx := context.Background()
	require.NoError(t, r.Ping(ctx))

	key := Key("test", time.Now().Format("150405.000000"), "svg")
	_, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, key, []byte("<svg/>")))
	got, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("<svg/>"), got)
}
