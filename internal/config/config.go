package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreSQL    = "sql"
	StoreMemory = "memory"
)

type Config struct {
	Port             int           `env:"PORT" envDefault:"8080"`
	DBDriver         string        `env:"DB_DRIVER" envDefault:"sqlite3"`
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"file:eworldcup.db?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"`
	CORSOrigins      []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	ParticipantStore string        `env:"PARTICIPANT_STORE" envDefault:"sql"`
	SeedFile         string        `env:"SEED_FILE"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"text"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBDriver != "sqlite3" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver)
	}
	if c.ParticipantStore != StoreSQL && c.ParticipantStore != StoreMemory {
		return fmt.Errorf("PARTICIPANT_STORE must be %s or %s, got %q", StoreSQL, StoreMemory, c.ParticipantStore)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
