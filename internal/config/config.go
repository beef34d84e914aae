package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the configuration of the application
type Config struct {
	// Environment name, "prod" switches the logger to JSON output
	Env string
	// Database driver: sqlite3 or postgres
	DBDriver string
	// Database DSN; for sqlite3 defaults to DataDir/quiztube.db
	DBDSN string
	// Directory for the embedded database
	DataDir string
	// Telegram token; prompts are only logged when empty
	TelegramToken string
	// Interval between notification batches
	NotifyInterval time.Duration
	// Users processed in parallel by a batch
	NotifyConcurrency int
	// Per-user time limit inside a batch
	NotifyUserTimeout time.Duration
	// Time limit for a whole batch
	NotifyJobTimeout time.Duration
	// Top-ranked topics inspected when choosing a prompt question
	PromptCandidates int
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Env:               "dev",
		DBDriver:          "sqlite3",
		DataDir:           "data",
		NotifyInterval:    time.Hour,
		NotifyConcurrency: 4,
		NotifyUserTimeout: 30 * time.Second,
		NotifyJobTimeout:  10 * time.Minute,
		PromptCandidates:  5,
	}
}

// Load reads an optional .env file and overlays environment variables on the defaults
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Env = str("APP_ENV", cfg.Env)
	cfg.DBDriver = str("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = str("DB_DSN", cfg.DBDSN)
	cfg.DataDir = str("DATA_DIR", cfg.DataDir)
	cfg.TelegramToken = str("TELEGRAM_BOT_TOKEN", "")
	cfg.NotifyInterval = time.Duration(integer("NOTIFY_INTERVAL_MINUTES", int(cfg.NotifyInterval/time.Minute))) * time.Minute
	cfg.NotifyConcurrency = integer("NOTIFY_CONCURRENCY", cfg.NotifyConcurrency)
	cfg.NotifyUserTimeout = time.Duration(integer("NOTIFY_USER_TIMEOUT_SECONDS", int(cfg.NotifyUserTimeout/time.Second))) * time.Second
	cfg.NotifyJobTimeout = time.Duration(integer("NOTIFY_JOB_TIMEOUT_SECONDS", int(cfg.NotifyJobTimeout/time.Second))) * time.Second
	cfg.PromptCandidates = integer("PROMPT_CANDIDATES", cfg.PromptCandidates)

	if cfg.DBDriver == "sqlite3" && cfg.DBDSN == "" {
		cfg.DBDSN = filepath.Join(cfg.DataDir, "quiztube.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot run with
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required for driver %s", c.DBDriver)
	}
	if c.NotifyInterval <= 0 {
		return fmt.Errorf("NOTIFY_INTERVAL_MINUTES must be positive")
	}
	if c.NotifyConcurrency < 1 {
		return fmt.Errorf("NOTIFY_CONCURRENCY must be at least 1")
	}
	if c.NotifyUserTimeout <= 0 || c.NotifyJobTimeout <= 0 {
		return fmt.Errorf("notification timeouts must be positive")
	}
	if c.PromptCandidates < 1 {
		return fmt.Errorf("PROMPT_CANDIDATES must be at least 1")
	}
	return nil
}

func str(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func integer(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
