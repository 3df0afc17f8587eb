package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// DefaultSheetURL is the published CSV export of the store performance sheet.
const DefaultSheetURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQ8kOqYtXqgJ1r0Oa3r3X7bYp9pX4kQZy5n8rQmYq0w3bX2cH9K2nJt7Lw6pVvY5mR/pub?output=csv"

// DefaultCompletionURL is the hosted analysis endpoint.
const DefaultCompletionURL = "https://raiox-backend-run.a.run.app/analisar"

// Completion backends
const (
	CompletionHTTP   = "http"
	CompletionGemini = "gemini"
	CompletionNone   = "none"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Sheet         SheetConfig
	Completion    CompletionConfig
	Gemini        GeminiConfig
	Chat          ChatConfig
	Observability ObservabilityConfig
	LogLevel      slog.Level
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type SheetConfig struct {
	URL          string
	Timeout      time.Duration
	MaxAge       time.Duration
	RetryBackoff time.Duration
	RefreshCron  string
	CacheDir     string
}

type CompletionConfig struct {
	Backend      string
	URL          string
	LegacyPrompt bool
	Timeout      time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type ChatConfig struct {
	AssistantMode bool
	TimeZone      string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DATABASE_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "raiox"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Sheet: SheetConfig{
			URL:          getEnv("SHEET_CSV_URL", DefaultSheetURL),
			Timeout:      getEnvAsDuration("SHEET_TIMEOUT", 10*time.Second),
			MaxAge:       getEnvAsDuration("SHEET_MAX_AGE", 5*time.Minute),
			RetryBackoff: getEnvAsDuration("SHEET_RETRY_BACKOFF", 30*time.Second),
			RefreshCron:  getEnv("SHEET_REFRESH_CRON", ""),
			CacheDir:     getEnv("SNAPSHOT_CACHE_DIR", ""),
		},
		Completion: CompletionConfig{
			Backend:      strings.ToLower(getEnv("COMPLETION_BACKEND", CompletionHTTP)),
			URL:          getEnv("COMPLETION_URL", DefaultCompletionURL),
			LegacyPrompt: getEnvAsBool("COMPLETION_LEGACY_PROMPT", false),
			Timeout:      getEnvAsDuration("COMPLETION_TIMEOUT", 10*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Chat: ChatConfig{
			AssistantMode: getEnvAsBool("CHAT_ASSISTANT_MODE", false),
			TimeZone:      getEnv("CHAT_TIME_ZONE", "America/Sao_Paulo"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}

	switch cfg.Completion.Backend {
	case CompletionHTTP, CompletionNone:
	case CompletionGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required when COMPLETION_BACKEND=gemini")
		}
	default:
		return nil, fmt.Errorf("unknown COMPLETION_BACKEND %q", cfg.Completion.Backend)
	}

	if cfg.Sheet.URL == "" {
		return nil, errors.New("SHEET_CSV_URL is required")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err == nil {
		return level
	}
	return defaultValue
}
