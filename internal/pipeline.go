package internal

import (
	"context"
	"errors"
	"sort"
	"time"
)

// SleepPacer blocks for a fixed delay between players. Cache hits skip it;
// every other outcome, including per-player failures, pays it, because the
// delay exists purely to stay under Riot's request windows.
type SleepPacer struct {
	delay time.Duration
}

func NewSleepPacer(delay time.Duration) *SleepPacer {
	return &SleepPacer{delay: delay}
}

func (p *SleepPacer) Pause(ctx context.Context) {
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Pipeline drives one aggregation run over the roster: load the blob once,
// process players in order with at most one upstream call outstanding, save
// the blob once at the end even when the run was aborted by a throttle.
type Pipeline struct {
	store    Store
	resolver *IdentityResolver
	fetcher  *MatchFetcher
	pacer    Pacer
	roster   []FriendDescriptor
	logger   *Logger
	metrics  *MetricsCollector
}

func NewPipeline(store Store, riot RiotAPI, roster []FriendDescriptor, pacer Pacer, logger *Logger, metrics *MetricsCollector) *Pipeline {
	return &Pipeline{
		store:    store,
		resolver: NewIdentityResolver(riot, logger, metrics),
		fetcher:  NewMatchFetcher(riot, logger, metrics),
		pacer:    pacer,
		roster:   roster,
		logger:   logger,
		metrics:  metrics,
	}
}

func zeroSummary() Summary {
	return Summary{MostPlayedChampion: NoChampionSentinel}
}

func (p *Pipeline) Run(ctx context.Context, requestedCount int) *RunReport {
	count := ClampMatchCount(requestedCount)
	start := time.Now()
	state := p.store.Load(ctx)

	results := make([]PlayerResult, 0, len(p.roster))
	rateLimited := false
	var retryAfter *int

	for _, friend := range p.roster {
		rec := state.Player(friend.RosterKey())

		if rec.SummaryEntry.Fresh(time.Now(), count) {
			p.metrics.RecordCacheHit("summary")
			p.logger.Info("summary_cache_hit").
				Component("pipeline").
				Operation("run").
				Player(friend.RosterKey(), "").
				Cache(true, friend.RosterKey()).
				Log()
			results = append(results, PlayerResult{
				Label:    friend.Label,
				GameName: friend.GameName,
				TagLine:  friend.TagLine,
				Summary:  rec.SummaryEntry.Summary,
				Cached:   true,
			})
			// Cache hits are free, no pacing before the next player.
			continue
		}
		p.metrics.RecordCacheMiss("summary")

		summary, err := p.refreshPlayer(ctx, state, friend, count)
		if err == nil {
			rec.SummaryEntry = &SummaryEntry{
				Summary:        summary,
				RequestedCount: count,
				UpdatedAt:      time.Now(),
			}
			results = append(results, PlayerResult{
				Label:    friend.Label,
				GameName: friend.GameName,
				TagLine:  friend.TagLine,
				Summary:  summary,
			})
			p.pacer.Pause(ctx)
			continue
		}

		var rl *RateLimitedError
		if errors.As(err, &rl) {
			rateLimited = true
			retryAfter = rl.RetryAfterSeconds
			p.logger.Warn("pipeline_rate_limited").
				Component("pipeline").
				Operation("run").
				Player(friend.RosterKey(), "").
				Err(err).
				Log()

			if rec.SummaryEntry != nil {
				// Any cached summary beats nothing, staleness included.
				results = append(results, PlayerResult{
					Label:    friend.Label,
					GameName: friend.GameName,
					TagLine:  friend.TagLine,
					Summary:  rec.SummaryEntry.Summary,
					Cached:   true,
					Error:    ErrServedCached,
				})
			} else {
				results = append(results, PlayerResult{
					Label:    friend.Label,
					GameName: friend.GameName,
					TagLine:  friend.TagLine,
					Summary:  zeroSummary(),
					Error:    ErrNoCacheYet,
				})
			}
			// The upstream told us to stop; the rest of the roster waits for
			// the next run.
			break
		}

		p.logger.Error("player_refresh_failed").
			Component("pipeline").
			Operation("run").
			Player(friend.RosterKey(), "").
			Err(err).
			Log()
		results = append(results, PlayerResult{
			Label:    friend.Label,
			GameName: friend.GameName,
			TagLine:  friend.TagLine,
			Summary:  zeroSummary(),
			Error:    err.Error(),
		})
		p.pacer.Pause(ctx)
	}

	// Partial progress from an aborted run is still worth keeping.
	if err := p.store.Save(ctx, state); err != nil {
		p.logger.Error("state_save_failed").
			Component("pipeline").
			Operation("run").
			Err(err).
			Log()
	}

	sortResults(results)
	p.metrics.RecordRun(time.Since(start), rateLimited)

	return &RunReport{
		UpdatedAt:         time.Now().UTC(),
		Count:             count,
		RateLimited:       rateLimited,
		RetryAfterSeconds: retryAfter,
		Results:           results,
	}
}

// refreshPlayer resolves identity, lists recent match ids and fetches each
// detail sequentially, then aggregates. Details go into the shared matches
// namespace as a side effect; the summary entry is written by the caller
// only when the whole chain succeeded.
func (p *Pipeline) refreshPlayer(ctx context.Context, state *PersistedState, friend FriendDescriptor, count int) (Summary, error) {
	puuid, err := p.resolver.Resolve(ctx, state, friend)
	if err != nil {
		return Summary{}, err
	}

	ids, err := p.fetcher.ListRecentMatchIDs(ctx, puuid, count)
	if err != nil {
		return Summary{}, err
	}

	matches := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		match, err := p.fetcher.GetMatchDetail(ctx, state, id)
		if err != nil {
			return Summary{}, err
		}
		matches = append(matches, match)
	}

	return Summarize(puuid, matches), nil
}

// sortResults puts hard failures last; everything else sorts by winrate then
// games played, both descending, keeping roster order on full ties.
func sortResults(results []PlayerResult) {
	sort.SliceStable(results, func(i, j int) bool {
		hi, hj := results[i].HardError(), results[j].HardError()
		if hi != hj {
			return !hi
		}
		if results[i].Winrate != results[j].Winrate {
			return results[i].Winrate > results[j].Winrate
		}
		return results[i].Games > results[j].Games
	})
}
