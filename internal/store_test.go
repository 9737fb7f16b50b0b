package internal

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLogger() *Logger {
	return &Logger{
		level:       LogLevelError,
		service:     "test",
		environment: "test",
		logger:      log.New(bytes.NewBuffer(nil), "", 0),
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nope.json"), newTestLogger())

	state := fs.Load(context.Background())
	if state == nil {
		t.Fatal("expected zero state, got nil")
	}
	if state.Players == nil || state.Matches == nil {
		t.Error("expected initialized namespaces")
	}
	if len(state.Players) != 0 || len(state.Matches) != 0 {
		t.Error("expected empty namespaces")
	}
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStore(path, newTestLogger())
	state := fs.Load(context.Background())
	if state == nil || state.Players == nil || state.Matches == nil {
		t.Fatal("corrupt blob should default to zero state")
	}
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	fs := NewFileStore(path, newTestLogger())
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	state := NewPersistedState()
	state.Players["Rob#EUW"] = &PlayerCacheRecord{
		PUUIDEntry: &PUUIDEntry{PUUID: "puuid-rob", UpdatedAt: now},
		SummaryEntry: &SummaryEntry{
			Summary:        Summary{Games: 5, Wins: 3, Winrate: 60.0, MostPlayedChampion: "Ahri"},
			RequestedCount: 5,
			UpdatedAt:      now,
		},
	}
	state.Matches["EUW1_1"] = &MatchCacheRecord{
		Data:      map[string]interface{}{"info": map[string]interface{}{}},
		UpdatedAt: now,
	}

	if err := fs.Save(ctx, state); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := fs.Load(ctx)
	rec := loaded.Players["Rob#EUW"]
	if rec == nil || rec.PUUIDEntry == nil {
		t.Fatal("expected player record to survive roundtrip")
	}
	if rec.PUUIDEntry.PUUID != "puuid-rob" {
		t.Errorf("expected puuid-rob, got %s", rec.PUUIDEntry.PUUID)
	}
	if rec.SummaryEntry.RequestedCount != 5 {
		t.Errorf("expected requestedCount 5, got %d", rec.SummaryEntry.RequestedCount)
	}
	if rec.SummaryEntry.Summary.Winrate != 60.0 {
		t.Errorf("expected winrate 60.0, got %v", rec.SummaryEntry.Summary.Winrate)
	}
	if loaded.Matches["EUW1_1"] == nil {
		t.Error("expected match record to survive roundtrip")
	}
}

func TestFileStore_LoadPartialBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"players":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStore(path, newTestLogger())
	state := fs.Load(context.Background())
	if state.Matches == nil {
		t.Error("missing matches namespace should be initialized")
	}
}

func TestNewStore_Backends(t *testing.T) {
	cfg := &Config{CacheBackend: "file", CacheFile: filepath.Join(t.TempDir(), "c.json")}
	store, err := NewStore(cfg, newTestLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("expected *FileStore, got %T", store)
	}

	cfg.CacheBackend = "bogus"
	if _, err := NewStore(cfg, newTestLogger()); err == nil {
		t.Error("expected error for unknown backend")
	}
}
