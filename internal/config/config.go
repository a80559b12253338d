package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	LemonSqueezy LemonSqueezyConfig
	PostHog      PostHogConfig
	Cache        CacheConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// LemonSqueezyConfig carries billing provider credentials. Both key and store id
// must be present for live fetches; otherwise the ledger builder degrades to an
// empty series.
type LemonSqueezyConfig struct {
	APIKey  string
	StoreID string
	BaseURL string
}

// PostHogConfig carries analytics provider credentials. When incomplete, the
// analytics fetcher serves a mock series instead of calling out.
type PostHogConfig struct {
	APIKey    string
	ProjectID string
	Host      string
}

// CacheConfig selects the series cache backend. An empty RedisAddr falls back
// to the in-memory cache.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "revboard"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		LemonSqueezy: LemonSqueezyConfig{
			APIKey:  strings.TrimSpace(getenv("LEMONSQUEEZY_API_KEY", "")),
			StoreID: strings.TrimSpace(getenv("LEMONSQUEEZY_STORE_ID", "")),
			BaseURL: getenv("LEMONSQUEEZY_BASE_URL", "https://api.lemonsqueezy.com/v1"),
		},
		PostHog: PostHogConfig{
			APIKey:    strings.TrimSpace(getenv("POSTHOG_API_KEY", "")),
			ProjectID: strings.TrimSpace(getenv("POSTHOG_PROJECT_ID", "")),
			Host:      getenv("POSTHOG_HOST", "https://app.posthog.com"),
		},
		Cache: CacheConfig{
			RedisAddr:     strings.TrimSpace(getenv("CACHE_REDIS_ADDR", "")),
			RedisPassword: getenv("CACHE_REDIS_PASSWORD", ""),
			RedisDB:       getenvInt("CACHE_REDIS_DB", 0),
			TTLSeconds:    getenvInt("CACHE_TTL_SECONDS", 300),
		},

		DBType:     getenv("DATABASE_TYPE", "sqlite"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "revboard"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),
	}

	return cfg
}

// Enabled reports whether billing credentials are configured.
func (c LemonSqueezyConfig) Enabled() bool {
	return c.APIKey != "" && c.StoreID != ""
}

// Enabled reports whether analytics credentials are configured.
func (c PostHogConfig) Enabled() bool {
	return c.APIKey != "" && c.ProjectID != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
