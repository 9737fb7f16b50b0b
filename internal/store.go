package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Store persists the whole cache blob as one unit. Load never fails: a
// missing or corrupt blob is replaced with the zero state so a broken cache
// only costs refetches, never a request. Save overwrites the blob in full.
// No backend locks; two overlapping runs race read-then-write and the last
// writer wins.
type Store interface {
	Load(ctx context.Context) *PersistedState
	Save(ctx context.Context, state *PersistedState) error
}

// normalizeState repairs nil maps left behind by partial blobs.
func normalizeState(state *PersistedState) *PersistedState {
	if state == nil {
		return NewPersistedState()
	}
	if state.Players == nil {
		state.Players = make(map[string]*PlayerCacheRecord)
	}
	if state.Matches == nil {
		state.Matches = make(map[string]*MatchCacheRecord)
	}
	return state
}

type FileStore struct {
	path   string
	logger *Logger
}

func NewFileStore(path string, logger *Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (fs *FileStore) Load(ctx context.Context) *PersistedState {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		fs.logger.Info("cache_blob_missing").
			Component("store").
			Operation("load").
			Meta("path", fs.path).
			Log()
		return NewPersistedState()
	}

	var state PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		fs.logger.Warn("cache_blob_corrupt").
			Component("store").
			Operation("load").
			Err(err).
			Meta("path", fs.path).
			Log()
		return NewPersistedState()
	}

	return normalizeState(&state)
}

func (fs *FileStore) Save(ctx context.Context, state *PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0o644)
}

// RedisStore keeps the blob under a single key, reusing the redis instance
// already deployed for inbound rate limiting.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *Logger
}

func NewRedisStore(cfg *Config, logger *Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &RedisStore{
		client: client,
		key:    "squad:state:" + cfg.RiotRegion,
		logger: logger,
	}
}

func (rs *RedisStore) Load(ctx context.Context) *PersistedState {
	data, err := rs.client.Get(ctx, rs.key).Result()
	if err != nil {
		if err != redis.Nil {
			rs.logger.Warn("cache_blob_unreadable").
				Component("store").
				Operation("load").
				Err(err).
				Meta("key", rs.key).
				Log()
		}
		return NewPersistedState()
	}

	var state PersistedState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		rs.logger.Warn("cache_blob_corrupt").
			Component("store").
			Operation("load").
			Err(err).
			Meta("key", rs.key).
			Log()
		return NewPersistedState()
	}

	return normalizeState(&state)
}

func (rs *RedisStore) Save(ctx context.Context, state *PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, rs.key, data, 0).Err()
}

// PostgresStore keeps the blob in a single row of a key/value table. Still
// one flat blob, just survives hosts without a writable disk.
type PostgresStore struct {
	db     *sql.DB
	key    string
	logger *Logger
}

func NewPostgresStore(cfg *Config, logger *Logger) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDb,
		cfg.PostgresSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS squad_state (
			key TEXT PRIMARY KEY,
			blob JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{
		db:     db,
		key:    "squad:state:" + cfg.RiotRegion,
		logger: logger,
	}, nil
}

func (ps *PostgresStore) Load(ctx context.Context) *PersistedState {
	var data []byte
	err := ps.db.QueryRowContext(ctx,
		"SELECT blob FROM squad_state WHERE key = $1", ps.key).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			ps.logger.Warn("cache_blob_unreadable").
				Component("store").
				Operation("load").
				Err(err).
				Meta("key", ps.key).
				Log()
		}
		return NewPersistedState()
	}

	var state PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		ps.logger.Warn("cache_blob_corrupt").
			Component("store").
			Operation("load").
			Err(err).
			Meta("key", ps.key).
			Log()
		return NewPersistedState()
	}

	return normalizeState(&state)
}

func (ps *PostgresStore) Save(ctx context.Context, state *PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = ps.db.ExecContext(ctx, `
		INSERT INTO squad_state (key, blob) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			blob = $2,
			updated_at = NOW()
	`, ps.key, data)
	return err
}

func (ps *PostgresStore) Close() {
	if ps.db != nil {
		ps.db.Close()
	}
}

// NewStore picks the blob backend from CACHE_BACKEND.
func NewStore(cfg *Config, logger *Logger) (Store, error) {
	switch cfg.CacheBackend {
	case "", "file":
		return NewFileStore(cfg.CacheFile, logger), nil
	case "redis":
		return NewRedisStore(cfg, logger), nil
	case "postgres":
		return NewPostgresStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
