package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	v := newViper(map[string]any{
		"telegram_api_token": "token",
		"database_url":       "postgres://localhost/lexarena",
		"redis_url":          "redis://localhost:6379/0",
	})

	cfg, err := fromViper(v)
	if err != nil {
		t.Fatalf("fromViper() error = %v", err)
	}

	if cfg.Game.ExplanationDelay != 4*time.Second || cfg.Game.MatchAdvanceDelay != 3*time.Second {
		t.Errorf("game pacing = %+v", cfg.Game)
	}
	if cfg.Game.TickInterval != time.Second {
		t.Errorf("TickInterval = %v", cfg.Game.TickInterval)
	}
	if cfg.DB.MaxConnections != 20 || cfg.DB.MaxConnLifetime != 30*time.Second {
		t.Errorf("database = %+v", cfg.DB)
	}
	if cfg.Redis.DB != -1 || cfg.HTTP.Addr != ":8080" {
		t.Errorf("redis/http = %+v / %+v", cfg.Redis, cfg.HTTP)
	}
	if cfg.Match.StaleAfter != 15*time.Minute || cfg.Match.SweepSchedule != "* * * * *" {
		t.Errorf("match = %+v", cfg.Match)
	}
	if dsn, err := cfg.DB.DSN(); err != nil || dsn != "postgres://localhost/lexarena" {
		t.Errorf("DSN() = %q, %v", dsn, err)
	}
}

func TestFromViperOverrides(t *testing.T) {
	v := newViper(map[string]any{
		"telegram_api_token":       "token",
		"database_url":             "postgres://localhost/lexarena",
		"redis_url":                "redis://localhost:6379/0",
		"env":                      "production",
		"game.explanation_delay":   "0s",
		"match.stale_after":        "1h",
		"database.max_connections": 5,
	})

	cfg, err := fromViper(v)
	if err != nil {
		t.Fatalf("fromViper() error = %v", err)
	}
	if cfg.Env != "production" || cfg.Game.ExplanationDelay != 0 || cfg.Match.StaleAfter != time.Hour || cfg.DB.MaxConnections != 5 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestFromViperMissingSecrets(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "nothing set", values: map[string]any{}},
		{name: "no redis", values: map[string]any{"telegram_api_token": "t", "database_url": "postgres://x"}},
		{name: "no token", values: map[string]any{"database_url": "postgres://x", "redis_url": "redis://x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			if !errors.Is(err, ErrMissingEnvironmentVariables) {
				t.Errorf("fromViper() error = %v, want ErrMissingEnvironmentVariables", err)
			}
		})
	}
}
