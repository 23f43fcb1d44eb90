package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/school-portal/internal/ratelimit"
)

func TestLoginLimiter_FailsOpenWithoutRedis(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLoginLimiter(nil, zap.NewNop(), 3, time.Minute)
	for i := 0; i < 10; i++ {
		if !limiter.Allow(context.Background(), "alice") {
			t.Fatal("limiter without a redis client must fail open")
		}
	}
}

func TestLoginLimiter_DisabledWithZeroBudget(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLoginLimiter(nil, zap.NewNop(), 0, time.Minute)
	if !limiter.Allow(context.Background(), "alice") {
		t.Fatal("zero maxAttempts disables limiting")
	}
}

func TestLoginLimiter_KeyIsPerUsername(t *testing.T) {
	t.Parallel()

	if ratelimit.Key("alice") == ratelimit.Key("bob") {
		t.Fatal("attempt counters must be scoped per username")
	}
}
