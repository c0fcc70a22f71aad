package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewLimiter(rdb, "rl:test", limit, window), mr
}

func TestAllowWithinBudget(t *testing.T) {
	l, _ := newTestLimiter(t, 5, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, _, err := l.Allow(ctx, "bucket-a")
		require.NoError(t, err)
		assert.True(t, ok, "admission %d", i+1)
	}

	ok, retryAfter, err := l.Allow(ctx, "bucket-a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Hour)
}

func TestBucketsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "bucket-a")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, _, err := l.Allow(ctx, "bucket-a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, err = l.Allow(ctx, "bucket-b")
	require.NoError(t, err)
	assert.True(t, ok, "a full bucket must not leak into another bucket")
}

func TestWindowRollsForward(t *testing.T) {
	l, _ := newTestLimiter(t, 2, 100*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "bucket-a")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, _, err := l.Allow(ctx, "bucket-a")
	require.NoError(t, err)
	require.False(t, ok)

	time.Sleep(150 * time.Millisecond)

	ok, _, err = l.Allow(ctx, "bucket-a")
	require.NoError(t, err)
	assert.True(t, ok, "points older than the window must roll off")
}

func TestDegradesOpenWhenRedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Hour)
	ctx := context.Background()

	mr.Close()

	ok, _, err := l.Allow(ctx, "bucket-a")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestHashIP(t *testing.T) {
	a := HashIP("secret", "203.0.113.7")
	b := HashIP("secret", "203.0.113.7")
	c := HashIP("secret", "203.0.113.8")
	d := HashIP("other-secret", "203.0.113.7")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 64)
	assert.NotContains(t, a, ".")
}
