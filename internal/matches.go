package internal

import (
	"context"
	"time"
)

// ClampMatchCount normalizes the requested match count: zero means the
// default, anything else is clamped into [MatchCountMin, MatchCountMax].
func ClampMatchCount(count int) int {
	if count == 0 {
		count = MatchCountDefault
	}
	if count < MatchCountMin {
		return MatchCountMin
	}
	if count > MatchCountMax {
		return MatchCountMax
	}
	return count
}

// MatchFetcher retrieves recent ranked match ids and match details. The id
// list is always refetched; details live in the shared matches namespace so
// a game played by two roster members costs one upstream call.
type MatchFetcher struct {
	riot    RiotAPI
	logger  *Logger
	metrics *MetricsCollector
}

func NewMatchFetcher(riot RiotAPI, logger *Logger, metrics *MetricsCollector) *MatchFetcher {
	return &MatchFetcher{riot: riot, logger: logger, metrics: metrics}
}

// ListRecentMatchIDs returns up to count match ids, most recent first.
func (f *MatchFetcher) ListRecentMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	parsed, err := f.riot.MatchIDsByPUUID(ctx, puuid, count)
	if err != nil {
		return nil, err
	}

	arr, ok := parsed.([]interface{})
	if !ok {
		return nil, &MalformedResponseError{Expected: "array of match ids"}
	}

	ids := make([]string, 0, len(arr))
	for _, v := range arr {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetMatchDetail is cache-first. Matches are historical, so a fresh entry is
// authoritative; the 30 minute TTL only bounds blob growth against refetch
// cost, it is not a correctness window.
func (f *MatchFetcher) GetMatchDetail(ctx context.Context, state *PersistedState, matchID string) (map[string]interface{}, error) {
	now := time.Now()

	if rec := state.Matches[matchID]; rec.Fresh(now) {
		f.metrics.RecordCacheHit("match")
		f.logger.Debug("match_cache_hit").
			Component("match_fetcher").
			Operation("get_match_detail").
			Match(matchID).
			Cache(true, matchID).
			Log()
		return rec.Data, nil
	}
	f.metrics.RecordCacheMiss("match")

	parsed, err := f.riot.MatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, &MalformedResponseError{Expected: "match object"}
	}

	state.Matches[matchID] = &MatchCacheRecord{Data: obj, UpdatedAt: now}
	return obj, nil
}
