// Package ratelimit implements a rolling-window admission counter backed by
// Redis sorted sets. Bucket keys are derived from an HMAC of the caller IP so
// raw addresses never land in limiter state.
package ratelimit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter admits at most limit events per rolling window for each bucket
// key. Consuming a point at time T keeps it counted until T+window.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// HashIP returns a hex HMAC-SHA256 of ip under secret.
func HashIP(secret, ip string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// Allow consumes one point from the bucket. When the budget is exhausted it
// returns false and how long the caller should wait before the oldest point
// rolls out of the window. If Redis is unreachable the limiter degrades open.
func (l *Limiter) Allow(ctx context.Context, bucketKey string) (bool, time.Duration, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, bucketKey)
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Warn("rate limiter degraded, admitting request", zap.Error(err))
		return true, 0, err
	}

	if int(countCmd.Val()) >= l.limit {
		retryAfter := l.window
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = time.Until(oldestAt.Add(l.window))
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return false, retryAfter, nil
	}

	// Member must be unique per admission or concurrent points collapse.
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())
	pipe = l.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, key, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Warn("rate limiter degraded, admitting request", zap.Error(err))
		return true, 0, err
	}
	return true, 0, nil
}
