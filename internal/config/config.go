package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string   `mapstructure:"env"` // current application environment (local, dev, production)
	TelegramAPIToken string   `mapstructure:"-"`   // Telegram API token loaded from environment
	DB               DB       `mapstructure:"database"`
	Redis            Redis    `mapstructure:"redis"`
	HTTP             HTTP     `mapstructure:"http"`
	Game             Game     `mapstructure:"game"`
	Match            Match    `mapstructure:"match"`
	Presence         Presence `mapstructure:"presence"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

type Redis struct {
	URL string `mapstructure:"-"`  // loaded from REDIS_URL
	DB  int    `mapstructure:"db"` // overrides the database of the URL when not negative
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// Game holds gameplay pacing.
type Game struct {
	ExplanationDelay  time.Duration `mapstructure:"explanation_delay"`
	MatchAdvanceDelay time.Duration `mapstructure:"match_advance_delay"`
	TickInterval      time.Duration `mapstructure:"tick_interval"`
}

type Match struct {
	StaleAfter    time.Duration `mapstructure:"stale_after"`    // untouched matches older than this are closed
	SweepSchedule string        `mapstructure:"sweep_schedule"` // cron spec of the stale match sweeper
}

type Presence struct {
	TTL           time.Duration `mapstructure:"ttl"`
	PruneSchedule string        `mapstructure:"prune_schedule"`
}

// Load reads configuration from config files and environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("redis.db", -1)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("game.explanation_delay", "4s")
	v.SetDefault("game.match_advance_delay", "3s")
	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("match.stale_after", "15m")
	v.SetDefault("match.sweep_schedule", "* * * * *")
	v.SetDefault("presence.ttl", "5m")
	v.SetDefault("presence.prune_schedule", "*/5 * * * *")
}

func fromViper(v *viper.Viper) (*Config, error) {
	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Redis.URL = v.GetString("redis_url")

	var missing []string
	if cfg.TelegramAPIToken == "" {
		missing = append(missing, "TELEGRAM_API_TOKEN")
	}
	if cfg.DB.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Redis.URL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnvironmentVariables, strings.Join(missing, ", "))
	}

	return &cfg, nil
}
