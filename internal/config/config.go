// Package config provides application configuration management.
// It loads settings from environment variables (with optional .env file)
// and provides defaults for server mode, catalog fetching, LLM providers
// and cache behavior.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Catalog Configuration
	CatalogURL        string        // URL of the course catalog JSON document
	FetchTimeout      time.Duration // Per-request timeout for catalog fetches
	FetchMaxRetries   int           // Max retries for catalog fetches (exponential backoff)
	FetchInitialDelay time.Duration // Initial backoff delay between retries

	// LLM Configuration
	GeminiAPIKey string // Gemini API key (primary chat provider)
	GroqAPIKey   string // Groq API key (OpenAI-compatible fallback provider)
	GeminiModel  string // Gemini chat model (default: gemini-2.0-flash)
	GroqModel    string // Groq chat model (default: llama-3.3-70b-versatile)
	LLMTimeout   time.Duration // Overall timeout for one chat completion

	// Chat Configuration
	HistoryTTL      time.Duration // How long idle conversation history is kept
	MaxHistoryTurns int           // Turns of history included in the prompt (default: 5)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics Basic Auth (empty = no auth)

	// Sentry Configuration
	SentryDSN         string // Sentry DSN (empty = disabled)
	SentryEnvironment string // Deployment environment tag

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	GlobalRateRPS   float64 // Global rate limit in requests per second
	GlobalRateBurst int     // Global rate limit burst size

	// Data Configuration
	DataDir string // Directory for the SQLite index snapshot cache
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Catalog Configuration
		CatalogURL:        getEnv("CATALOG_URL", ""),
		FetchTimeout:      getDurationEnv("CATALOG_FETCH_TIMEOUT", 15*time.Second),
		FetchMaxRetries:   getIntEnv("CATALOG_FETCH_MAX_RETRIES", 3),
		FetchInitialDelay: getDurationEnv("CATALOG_FETCH_INITIAL_DELAY", time.Second),

		// LLM Configuration
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqModel:    getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeout:   getDurationEnv("LLM_TIMEOUT", 20*time.Second),

		// Chat Configuration
		HistoryTTL:      getDurationEnv("CHAT_HISTORY_TTL", 30*time.Minute),
		MaxHistoryTurns: getIntEnv("CHAT_MAX_HISTORY_TURNS", 5),

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Sentry Configuration
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),

		// Server Configuration
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		GlobalRateRPS:   getFloatEnv("GLOBAL_RATE_LIMIT_RPS", 50.0),
		GlobalRateBurst: getIntEnv("GLOBAL_RATE_LIMIT_BURST", 100),

		// Data Configuration
		DataDir: getEnv("DATA_DIR", getDefaultDataDir()),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.CatalogURL == "" {
		errs = append(errs, errors.New("CATALOG_URL is required"))
	} else if _, err := url.ParseRequestURI(c.CatalogURL); err != nil {
		errs = append(errs, fmt.Errorf("CATALOG_URL is not a valid URL: %w", err))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CATALOG_FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout))
	}
	if c.FetchMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("CATALOG_FETCH_MAX_RETRIES cannot be negative, got %d", c.FetchMaxRetries))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %v", c.LLMTimeout))
	}
	if c.MaxHistoryTurns <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_MAX_HISTORY_TURNS must be positive, got %d", c.MaxHistoryTurns))
	}
	if c.GlobalRateRPS <= 0 {
		errs = append(errs, fmt.Errorf("GLOBAL_RATE_LIMIT_RPS must be positive, got %v", c.GlobalRateRPS))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// SQLitePath returns the full path to the SQLite snapshot cache file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}
