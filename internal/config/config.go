package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                 string
	DBDriver             string
	DBPath               string
	LogLevel             string
	CatalogPath          string
	SessionStore         string
	DefaultQuestionCount int
	MaxQuestionCount     int
	HistoryLimit         int
	ResultWorkerCount    int
	ResultQueueSize      int
	JWTSecret            string
	CORSOrigins          []string
	SessionTTL           time.Duration
	SweepInterval        time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBDriver:             envOr("DB_DRIVER", "sqlite3"),
		DBPath:               envOr("DB_PATH", "file:vocabquiz.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		CatalogPath:          os.Getenv("CATALOG_PATH"),
		SessionStore:         envOr("SESSION_STORE", "db"),
		DefaultQuestionCount: envIntOr("DEFAULT_QUESTION_COUNT", 10),
		MaxQuestionCount:     envIntOr("MAX_QUESTION_COUNT", 100),
		HistoryLimit:         envIntOr("HISTORY_LIMIT", 20),
		ResultWorkerCount:    envIntOr("RESULT_WORKER_COUNT", 2),
		ResultQueueSize:      envIntOr("RESULT_QUEUE_SIZE", 64),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		CORSOrigins:          csvOr("CORS_ORIGINS", "http://localhost:3000"),
		SessionTTL:           envDurationOr("SESSION_TTL", 24*time.Hour),
		SweepInterval:        envDurationOr("SWEEP_INTERVAL", time.Hour),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER must be sqlite3 or pgx, got %q", c.DBDriver))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	switch c.SessionStore {
	case "db", "memory":
	default:
		problems = append(problems, fmt.Sprintf("SESSION_STORE must be db or memory, got %q", c.SessionStore))
	}
	if c.CatalogPath != "" {
		if _, err := os.Stat(c.CatalogPath); err != nil {
			problems = append(problems, fmt.Sprintf("CATALOG_PATH %q is not readable: %v", c.CatalogPath, err))
		}
	}
	if c.MaxQuestionCount < 1 {
		problems = append(problems, fmt.Sprintf("MAX_QUESTION_COUNT must be at least 1, got %d", c.MaxQuestionCount))
	}
	if c.DefaultQuestionCount < 1 || c.DefaultQuestionCount > c.MaxQuestionCount {
		problems = append(problems, fmt.Sprintf("DEFAULT_QUESTION_COUNT must be between 1 and MAX_QUESTION_COUNT, got %d", c.DefaultQuestionCount))
	}
	if c.HistoryLimit < 1 {
		problems = append(problems, fmt.Sprintf("HISTORY_LIMIT must be at least 1, got %d", c.HistoryLimit))
	}
	if c.ResultWorkerCount < 1 || c.ResultWorkerCount > 32 {
		problems = append(problems, fmt.Sprintf("RESULT_WORKER_COUNT must be between 1 and 32, got %d", c.ResultWorkerCount))
	}
	if c.ResultQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("RESULT_QUEUE_SIZE must be at least 1, got %d", c.ResultQueueSize))
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		problems = append(problems, "SWEEP_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

func csvOr(key, def string) []string {
	parts := strings.Split(envOr(key, def), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
