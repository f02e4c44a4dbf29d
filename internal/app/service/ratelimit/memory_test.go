package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/pkg/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory() (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.now = clock.Now
	return m, clock
}

func TestMemory_DeniesBeyondLimit(t *testing.T) {
	m, _ := newTestMemory()
	limit := Limit{MaxRequests: 3, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := m.Allow(ctx, "generate:10.0.0.1", limit)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 2-i, d.Remaining)
	}
	d, err := m.Allow(ctx, "generate:10.0.0.1", limit)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, time.Minute, d.RetryAfter)

	other, err := m.Allow(ctx, "generate:10.0.0.2", limit)
	require.NoError(t, err)
	require.True(t, other.Allowed)
}

func TestMemory_AllowsAfterWindow(t *testing.T) {
	m, clock := newTestMemory()
	limit := Limit{MaxRequests: 2, Window: time.Minute}
	ctx := context.Background()

	_, _ = m.Allow(ctx, "k", limit)
	clock.Advance(30 * time.Second)
	_, _ = m.Allow(ctx, "k", limit)
	d, _ := m.Allow(ctx, "k", limit)
	require.False(t, d.Allowed)

	// The first hit leaves the window; the second is still inside it.
	clock.Advance(30 * time.Second)
	d, _ = m.Allow(ctx, "k", limit)
	require.True(t, d.Allowed)
	d, _ = m.Allow(ctx, "k", limit)
	require.False(t, d.Allowed)

	clock.Advance(time.Minute)
	d, _ = m.Allow(ctx, "k", limit)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining)
}

func TestMemory_PrunesIdleKeys(t *testing.T) {
	m, clock := newTestMemory()
	limit := Limit{MaxRequests: 5, Window: 10 * time.Second}
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, _ = m.Allow(ctx, k, limit)
	}
	require.Equal(t, 3, m.keys())

	clock.Advance(2 * time.Minute)
	_, _ = m.Allow(ctx, "d", limit)
	require.Equal(t, 1, m.keys())
}

func TestMemory_ConcurrentCallersShareTheLimit(t *testing.T) {
	m := NewMemory()
	limit := Limit{MaxRequests: 50, Window: time.Hour}

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := m.Allow(context.Background(), "shared", limit)
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 50, allowed.Load())
}

func TestMemory_RejectsInvalidLimit(t *testing.T) {
	m := NewMemory()
	_, err := m.Allow(context.Background(), "k", Limit{MaxRequests: 0, Window: time.Second})
	require.ErrorIs(t, err, ErrInvalidLimit)
	_, err = m.Allow(context.Background(), "k", Limit{MaxRequests: 1})
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestNewLimiter(t *testing.T) {
	log := zap.NewNop().Sugar()

	l, err := NewLimiter(Params{Cfg: &config.Config{RateLimit: config.RateLimitConfig{Backend: config.RateLimitBackendMemory}}, Log: log})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, l)

	_, err = NewLimiter(Params{Cfg: &config.Config{RateLimit: config.RateLimitConfig{Backend: config.RateLimitBackendRedis}}, Log: log})
	require.Error(t, err)

	_, err = NewLimiter(Params{Cfg: &config.Config{RateLimit: config.RateLimitConfig{Backend: "etcd"}}, Log: log})
	require.ErrorContains(t, err, "unknown backend")
}

func TestLimitFromRule(t *testing.T) {
	l := LimitFromRule(config.RateLimitRule{MaxRequests: 20, WindowSeconds: 60})
	require.Equal(t, Limit{MaxRequests: 20, Window: time.Minute}, l)
}
