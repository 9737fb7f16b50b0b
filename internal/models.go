package internal

import "time"

// Cache TTLs per namespace. Identity rarely changes, summaries go stale
// quickly, match details are historical and only refetched for cost control.
const (
	IdentityTTL = 24 * time.Hour
	SummaryTTL  = 5 * time.Minute
	MatchTTL    = 30 * time.Minute
)

const (
	MatchCountDefault = 5
	MatchCountMin     = 1
	MatchCountMax     = 8
)

// NoChampionSentinel is reported when a summary covers zero games.
const NoChampionSentinel = "-"

type FriendDescriptor struct {
	Label    string `json:"label"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// RosterKey is the player-namespace cache key for this friend.
func (f FriendDescriptor) RosterKey() string {
	return f.GameName + "#" + f.TagLine
}

type PUUIDEntry struct {
	PUUID     string    `json:"puuid"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *PUUIDEntry) Fresh(now time.Time) bool {
	return e != nil && now.Sub(e.UpdatedAt) < IdentityTTL
}

type Summary struct {
	Games               int     `json:"games"`
	Wins                int     `json:"wins"`
	Winrate             float64 `json:"winrate"`
	AvgKills            float64 `json:"avgKills"`
	AvgDeaths           float64 `json:"avgDeaths"`
	AvgAssists          float64 `json:"avgAssists"`
	MostPlayedChampion  string  `json:"mostPlayedChampion"`
	LastGameStartMillis int64   `json:"lastGameStartMillis"`
}

type SummaryEntry struct {
	Summary        Summary   `json:"summary"`
	RequestedCount int       `json:"requestedCount"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Fresh requires both the time window and a matching requested count; a
// summary for 5 games cannot serve a request for 8 even if it is recent.
func (e *SummaryEntry) Fresh(now time.Time, requestedCount int) bool {
	return e != nil &&
		now.Sub(e.UpdatedAt) < SummaryTTL &&
		e.RequestedCount == requestedCount
}

type PlayerCacheRecord struct {
	PUUIDEntry   *PUUIDEntry   `json:"puuidEntry,omitempty"`
	SummaryEntry *SummaryEntry `json:"summaryEntry,omitempty"`
}

// MatchCacheRecord keeps the raw match document as returned upstream so the
// aggregator sees the same shape on a cache hit and on a live fetch.
type MatchCacheRecord struct {
	Data      map[string]interface{} `json:"data"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func (r *MatchCacheRecord) Fresh(now time.Time) bool {
	return r != nil && now.Sub(r.UpdatedAt) < MatchTTL
}

// PersistedState is the whole cache blob: one players namespace keyed by
// gameName#tagLine and one matches namespace keyed by match id, shared
// across all players. Read once per run, written once per run.
type PersistedState struct {
	Players map[string]*PlayerCacheRecord `json:"players"`
	Matches map[string]*MatchCacheRecord  `json:"matches"`
}

func NewPersistedState() *PersistedState {
	return &PersistedState{
		Players: make(map[string]*PlayerCacheRecord),
		Matches: make(map[string]*MatchCacheRecord),
	}
}

// Player returns the record for key, creating it if absent.
func (s *PersistedState) Player(key string) *PlayerCacheRecord {
	rec, ok := s.Players[key]
	if !ok {
		rec = &PlayerCacheRecord{}
		s.Players[key] = rec
	}
	return rec
}

type PlayerResult struct {
	Label    string `json:"label"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
	Summary
	Cached bool   `json:"cached"`
	Error  string `json:"error,omitempty"`
}

// ErrServedCached marks a row answered from a stale summary because the
// upstream throttled us. It is a warning, not a hard error, and does not
// push the row to the end of the sort.
const ErrServedCached = "rate limited, served cached"

const ErrNoCacheYet = "rate limited, no cached data yet"

// HardError reports whether this row failed outright.
func (r PlayerResult) HardError() bool {
	return r.Error != "" && r.Error != ErrServedCached
}

type RunReport struct {
	UpdatedAt         time.Time      `json:"updatedAt"`
	Count             int            `json:"count"`
	RateLimited       bool           `json:"rateLimited"`
	RetryAfterSeconds *int           `json:"retryAfterSeconds"`
	Results           []PlayerResult `json:"results"`
}

type AccountData struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type RefreshTask struct {
	Count  int    `json:"count"`
	Reason string `json:"reason,omitempty"`
}
