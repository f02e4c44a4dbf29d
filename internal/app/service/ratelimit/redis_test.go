package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	c := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()).Err())
	return c
}

func TestRedis_SlidingWindow(t *testing.T) {
	c := redisClient(t)
	r := NewRedis(c)
	now := time.Now()
	r.now = func() time.Time { return now }

	ctx := context.Background()
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { c.Del(ctx, redisKeyPrefix+key) })
	limit := Limit{MaxRequests: 2, Window: time.Second}

	d, err := r.Allow(ctx, key, limit)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining)

	d, err = r.Allow(ctx, key, limit)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = r.Allow(ctx, key, limit)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, time.Second, d.RetryAfter)

	now = now.Add(time.Second + time.Millisecond)
	d, err = r.Allow(ctx, key, limit)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}
