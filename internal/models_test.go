package internal

import (
	"testing"
	"time"
)

func TestFriendDescriptor_RosterKey(t *testing.T) {
	f := FriendDescriptor{Label: "Rob", GameName: "RiftRoberta", TagLine: "EUW"}
	if f.RosterKey() != "RiftRoberta#EUW" {
		t.Errorf("expected RiftRoberta#EUW, got %s", f.RosterKey())
	}
}

func TestPUUIDEntry_Fresh(t *testing.T) {
	now := time.Now()

	var nilEntry *PUUIDEntry
	if nilEntry.Fresh(now) {
		t.Error("nil entry must not be fresh")
	}

	fresh := &PUUIDEntry{PUUID: "p", UpdatedAt: now.Add(-23 * time.Hour)}
	if !fresh.Fresh(now) {
		t.Error("23h old identity should be fresh")
	}

	stale := &PUUIDEntry{PUUID: "p", UpdatedAt: now.Add(-25 * time.Hour)}
	if stale.Fresh(now) {
		t.Error("25h old identity should be stale")
	}
}

func TestSummaryEntry_Fresh(t *testing.T) {
	now := time.Now()

	entry := &SummaryEntry{RequestedCount: 5, UpdatedAt: now.Add(-time.Minute)}
	if !entry.Fresh(now, 5) {
		t.Error("recent entry with matching count should be fresh")
	}
	if entry.Fresh(now, 8) {
		t.Error("count mismatch must invalidate a time-fresh entry")
	}

	old := &SummaryEntry{RequestedCount: 5, UpdatedAt: now.Add(-6 * time.Minute)}
	if old.Fresh(now, 5) {
		t.Error("6m old summary should be stale")
	}

	var nilEntry *SummaryEntry
	if nilEntry.Fresh(now, 5) {
		t.Error("nil entry must not be fresh")
	}
}

func TestMatchCacheRecord_Fresh(t *testing.T) {
	now := time.Now()

	rec := &MatchCacheRecord{UpdatedAt: now.Add(-29 * time.Minute)}
	if !rec.Fresh(now) {
		t.Error("29m old match should be fresh")
	}

	rec.UpdatedAt = now.Add(-31 * time.Minute)
	if rec.Fresh(now) {
		t.Error("31m old match should be stale")
	}
}

func TestPlayerResult_HardError(t *testing.T) {
	tests := []struct {
		err      string
		expected bool
	}{
		{"", false},
		{ErrServedCached, false},
		{ErrNoCacheYet, true},
		{"riot API request failed: 404 Data not found", true},
	}

	for _, tt := range tests {
		r := PlayerResult{Error: tt.err}
		if r.HardError() != tt.expected {
			t.Errorf("HardError(%q): expected %v", tt.err, tt.expected)
		}
	}
}

func TestPersistedState_Player(t *testing.T) {
	state := NewPersistedState()

	rec := state.Player("Rob#EUW")
	if rec == nil {
		t.Fatal("expected record created on demand")
	}
	if state.Player("Rob#EUW") != rec {
		t.Error("expected same record on second access")
	}
}
