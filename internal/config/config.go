// Package config provides configuration management for Spiritual Reflections.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/filter"
	"github.com/infoai1/spiritual-reflections/internal/interpret"
	"github.com/infoai1/spiritual-reflections/internal/newsapi"
)

// Config holds all application configuration.
type Config struct {
	// News sources
	NewsAPIKey     string
	NewsAPISources []string
	RSSFeeds       []string

	// Interpretation model (OpenAI-compatible)
	LLMAPIKey   string
	LLMEndpoint string
	LLMModel    string
	LLMRPM      int

	// MongoDB settings
	MongoURI string
	MongoDB  string

	// Redis settings; an empty address disables the Redis layer
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Admin settings
	AdminPassword      string
	AdminSessionSecret string
	SessionDuration    time.Duration
	CookieSecure       bool

	// Keyword table override (YAML)
	FilterConfigPath string

	// Jobs
	QueueRefillSchedule string
	WarmupSchedule      string
	WarmupLimit         int

	// Server settings
	HTTPAddr string
	Debug    bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		// News
		NewsAPIKey:     getEnv("NEWS_API_KEY", ""),
		NewsAPISources: getEnvList("NEWS_API_SOURCES", newsapi.DefaultSources),
		RSSFeeds:       getEnvList("RSS_FEEDS", nil),

		// LLM
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMEndpoint: getEnv("LLM_ENDPOINT", interpret.DefaultEndpoint),
		LLMModel:    getEnv("LLM_MODEL", interpret.DefaultModel),
		LLMRPM:      getEnvInt("LLM_RPM", interpret.DefaultRPM),

		// MongoDB
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "spiritual_reflections"),

		// Redis
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTL:        getEnvDuration("CACHE_TTL", 7*24*time.Hour),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 1000),

		// Admin
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminSessionSecret: getEnv("ADMIN_SESSION_SECRET", ""),
		SessionDuration:    getEnvDuration("SESSION_DURATION", 24*time.Hour),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),

		// Filter
		FilterConfigPath: getEnv("FILTER_CONFIG", ""),

		// Jobs
		QueueRefillSchedule: getEnv("QUEUE_REFILL_SCHEDULE", "0 */6 * * *"),
		WarmupSchedule:      getEnv("WARMUP_SCHEDULE", "30 */6 * * *"),
		WarmupLimit:         getEnvInt("WARMUP_LIMIT", 20),

		// Server
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Debug:    getEnvBool("DEBUG", false),
	}

	return cfg, nil
}

// FilterConfig returns the keyword tables: the YAML override when one is
// configured, otherwise the built-in defaults.
func (c *Config) FilterConfig() (filter.Config, error) {
	if c.FilterConfigPath == "" {
		return filter.DefaultConfig(), nil
	}
	return filter.LoadConfig(c.FilterConfigPath)
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.NewsAPIKey == "" {
		log.Warn().Msg("NEWS_API_KEY not set, sample news will be served")
	}
	if c.LLMAPIKey == "" {
		log.Warn().Msg("LLM_API_KEY not set, fallback interpretations will be served")
	}
	if c.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, admin login is disabled")
	}
	if c.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set, Redis cache layer disabled")
	}

	if _, err := c.FilterConfig(); err != nil {
		return fmt.Errorf("FILTER_CONFIG: %w", err)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
