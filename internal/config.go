package internal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RiotAPIKey  string `env:"RIOT_API_KEY"`
	RiotRegion  string `env:"RIOT_REGION" envDefault:"EUW1"`
	RiotBaseURL string `env:"RIOT_BASE_URL"`

	CacheBackend string `env:"CACHE_BACKEND" envDefault:"file"`
	CacheFile    string `env:"CACHE_FILE" envDefault:"squad-cache.json"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDb       string `env:"POSTGRES_DB"`
	PostgresSSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	NATSUrl         string        `env:"NATS_URL"`
	NATSClientID    string        `env:"NATS_CLIENT_ID" envDefault:"squad-core"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"15m"`

	MatchCount int           `env:"MATCH_COUNT" envDefault:"5"`
	PaceDelay  time.Duration `env:"PACE_DELAY" envDefault:"1200ms"`

	RateLimitEnabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitRedisPrefix string `env:"RATE_LIMIT_REDIS_PREFIX" envDefault:"squad:ratelimit"`

	RosterJSON string `env:"SQUAD_ROSTER"`

	AppPort  string `env:"APP_PORT" envDefault:"8000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// defaultRoster ships a small squad so the service does something useful
// before SQUAD_ROSTER is configured.
var defaultRoster = []FriendDescriptor{
	{Label: "Rob", GameName: "RiftRoberta", TagLine: "EUW"},
	{Label: "Dani", GameName: "DaniMidOrFeed", TagLine: "EUW"},
	{Label: "Leo", GameName: "LeoJungleDiff", TagLine: "BR1"},
}

// Roster returns the configured friend list, falling back to the built-in
// squad when SQUAD_ROSTER is unset.
func (c *Config) Roster() ([]FriendDescriptor, error) {
	if c.RosterJSON == "" {
		return defaultRoster, nil
	}

	var roster []FriendDescriptor
	if err := json.Unmarshal([]byte(c.RosterJSON), &roster); err != nil {
		return nil, fmt.Errorf("parsing SQUAD_ROSTER: %w", err)
	}

	for i, f := range roster {
		if f.GameName == "" || f.TagLine == "" {
			return nil, fmt.Errorf("SQUAD_ROSTER entry %d is missing gameName or tagLine", i)
		}
	}
	return roster, nil
}
