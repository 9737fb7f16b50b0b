package internal

import (
	"context"
)

type RiotAPI interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (interface{}, error)
	MatchIDsByPUUID(ctx context.Context, puuid string, count int) (interface{}, error)
	MatchByID(ctx context.Context, matchID string) (interface{}, error)
}

type RateLimiterInterface interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Pacer controls the fixed delay the pipeline inserts between players so
// pacing stays testable apart from the network calls it protects.
type Pacer interface {
	Pause(ctx context.Context)
}
