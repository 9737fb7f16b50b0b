package internal

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisCounter struct {
	counters map[string]int64
	ttls     map[string]time.Duration
}

func (m *mockRedisCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[key]++
	cmd.SetVal(m.counters[key])
	return cmd
}

func (m *mockRedisCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if m.ttls == nil {
		m.ttls = make(map[string]time.Duration)
	}
	m.ttls[key] = expiration
	cmd.SetVal(true)
	return cmd
}

func newTestRateLimiter(mock *mockRedisCounter) *RateLimiter {
	return &RateLimiter{
		client: mock,
		prefix: "test",
		logger: newTestLogger(),
	}
}

func TestRateLimiter_Allow_FirstRequest(t *testing.T) {
	mockRedis := &mockRedisCounter{}
	rateLimiter := newTestRateLimiter(mockRedis)

	allowed, err := rateLimiter.Allow(context.Background(), "1.2.3.4")
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !allowed {
		t.Error("first request should be allowed")
	}

	if mockRedis.counters["test:1.2.3.4:1"] != 1 {
		t.Errorf("expected counter 1, got %d", mockRedis.counters["test:1.2.3.4:1"])
	}
	if mockRedis.ttls["test:1.2.3.4:1"] != 1*time.Second {
		t.Errorf("expected TTL 1s, got %v", mockRedis.ttls["test:1.2.3.4:1"])
	}
}

func TestRateLimiter_CheckLimit_SetsWindowTTL(t *testing.T) {
	mockRedis := &mockRedisCounter{}
	rateLimiter := newTestRateLimiter(mockRedis)

	limit := RateLimit{requests: 5, window: 10 * time.Second}
	allowed, err := rateLimiter.checkLimit(context.Background(), "client", limit)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !allowed {
		t.Error("first request should be allowed")
	}

	if mockRedis.ttls["test:client:10"] != 10*time.Second {
		t.Errorf("expected TTL 10s, got %v", mockRedis.ttls["test:client:10"])
	}
}

func TestRateLimiter_Windows(t *testing.T) {
	tests := []struct {
		name          string
		counters      map[string]int64
		expectAllowed bool
	}{
		{
			name: "well within both windows",
			counters: map[string]int64{
				"test:client:1":   3,
				"test:client:120": 40,
			},
			expectAllowed: true,
		},
		{
			name: "exactly at both limits",
			counters: map[string]int64{
				"test:client:1":   9,
				"test:client:120": 119,
			},
			expectAllowed: true,
		},
		{
			name: "exceeds 1s window",
			counters: map[string]int64{
				"test:client:1":   10,
				"test:client:120": 40,
			},
			expectAllowed: false,
		},
		{
			name: "exceeds 2m window",
			counters: map[string]int64{
				"test:client:1":   3,
				"test:client:120": 120,
			},
			expectAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRedis := &mockRedisCounter{counters: tt.counters}
			rateLimiter := newTestRateLimiter(mockRedis)

			allowed, err := rateLimiter.Allow(context.Background(), "client")
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if allowed != tt.expectAllowed {
				t.Errorf("expected allowed=%v, got %v", tt.expectAllowed, allowed)
			}
		})
	}
}
