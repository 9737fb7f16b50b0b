package internal

import (
	"context"
	"time"
)

// IdentityResolver maps a riot id (gameName#tagLine) to a puuid, caching the
// answer in the players namespace for a day.
type IdentityResolver struct {
	riot    RiotAPI
	logger  *Logger
	metrics *MetricsCollector
}

func NewIdentityResolver(riot RiotAPI, logger *Logger, metrics *MetricsCollector) *IdentityResolver {
	return &IdentityResolver{riot: riot, logger: logger, metrics: metrics}
}

func (r *IdentityResolver) Resolve(ctx context.Context, state *PersistedState, friend FriendDescriptor) (string, error) {
	key := friend.RosterKey()
	rec := state.Player(key)
	now := time.Now()

	if rec.PUUIDEntry.Fresh(now) {
		r.metrics.RecordCacheHit("identity")
		r.logger.Debug("identity_cache_hit").
			Component("resolver").
			Operation("resolve").
			Player(key, rec.PUUIDEntry.PUUID).
			Cache(true, key).
			Log()
		return rec.PUUIDEntry.PUUID, nil
	}
	r.metrics.RecordCacheMiss("identity")

	parsed, err := r.riot.AccountByRiotID(ctx, friend.GameName, friend.TagLine)
	if err != nil {
		// Throttle and request failures propagate untouched; the stale
		// entry, if any, stays as it was.
		return "", err
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return "", &ResolutionFailedError{GameName: friend.GameName, TagLine: friend.TagLine}
	}
	puuid, _ := obj["puuid"].(string)
	if puuid == "" {
		return "", &ResolutionFailedError{GameName: friend.GameName, TagLine: friend.TagLine}
	}

	rec.PUUIDEntry = &PUUIDEntry{PUUID: puuid, UpdatedAt: now}

	r.logger.Info("identity_resolved").
		Component("resolver").
		Operation("resolve").
		Player(key, puuid).
		Log()

	return puuid, nil
}
