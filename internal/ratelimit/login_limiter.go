// Package ratelimit throttles repeated login attempts per username to
// slow down credential guessing.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "login_attempts:"

// LoginLimiter counts login attempts in Redis using a fixed window.
// When Redis is unavailable the limiter fails open: availability of
// login matters more than throttling.
type LoginLimiter struct {
	client      *redis.Client
	logger      *zap.Logger
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter builds a limiter. A nil client or non-positive
// maxAttempts disables limiting entirely.
func NewLoginLimiter(client *redis.Client, logger *zap.Logger, maxAttempts int, window time.Duration) *LoginLimiter {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginLimiter{client: client, logger: logger, maxAttempts: maxAttempts, window: window}
}

// Key returns the Redis key counting attempts for a username.
func Key(username string) string {
	return keyPrefix + username
}

// Allow records an attempt for the username and reports whether it is
// within the window's budget.
func (l *LoginLimiter) Allow(ctx context.Context, username string) bool {
	if l == nil || l.client == nil || l.maxAttempts <= 0 {
		return true
	}

	key := Key(username)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("login limiter expire failed", zap.Error(err))
		}
	}
	return count <= int64(l.maxAttempts)
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if l == nil || l.client == nil {
		return
	}
	if err := l.client.Del(ctx, Key(username)).Err(); err != nil {
		l.logger.Warn("login limiter reset failed", zap.Error(err))
	}
}
