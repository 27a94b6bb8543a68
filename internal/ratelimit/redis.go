package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ordergw/internal/logger"
)

// RedisWindow is a fixed-window counter limiter backed by a shared Redis
// store, for deployments running more than one process. Window keys embed
// the window start so INCR and expiry stay race-free across instances.
type RedisWindow struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisWindow(rdb *redis.Client, prefix string, limit int, window time.Duration) *RedisWindow {
	if prefix == "" {
		prefix = "rl:write:"
	}
	return &RedisWindow{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Allow implements Limiter. Backend errors fail open.
func (r *RedisWindow) Allow(ctx context.Context, key string) (bool, Info) {
	now := time.Now()
	windowStart := now.Truncate(r.window)
	resetAt := windowStart.Add(r.window)
	redisKey := r.prefix + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	// INCR and set expiry 2*window (safety)
	pipe := r.rdb.Pipeline()
	cnt := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warn("ratelimit: redis unavailable, failing open", zap.Error(err))
		return true, Info{Limit: r.limit, Remaining: r.limit, ResetAt: resetAt}
	}

	count := int(cnt.Val())
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	info := Info{
		Limit:     r.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if count > r.limit {
		info.RetryAfter = resetAt.Sub(now)
		return false, info
	}
	return true, info
}
