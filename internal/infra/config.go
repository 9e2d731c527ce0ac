package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	PublicBaseURL string

	FalAPIKey       string
	FalQueueBaseURL string
	FalSyncBaseURL  string
	FalRestBaseURL  string

	BlobToken   string
	BlobBaseURL string

	DatabaseURL string
	GeoIPDBPath string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	ResultCacheTTL time.Duration
	PollInterval   time.Duration
	PollMaxTries   int
	MaxUploadBytes int64

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	SubscribeTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		FalAPIKey:        os.Getenv("FAL_KEY"),
		FalQueueBaseURL:  getEnv("FAL_QUEUE_BASE_URL", "https://queue.fal.run"),
		FalSyncBaseURL:   getEnv("FAL_SYNC_BASE_URL", "https://fal.run"),
		FalRestBaseURL:   getEnv("FAL_REST_BASE_URL", "https://rest.alpha.fal.ai"),
		BlobToken:        os.Getenv("BLOB_READ_WRITE_TOKEN"),
		BlobBaseURL:      getEnv("BLOB_API_BASE_URL", "https://api.vercel.com/v2/blob"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ResultCacheTTL:   time.Second * time.Duration(getEnvInt("RESULT_CACHE_TTL_SECONDS", 0)),
		PollInterval:     time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 3)),
		PollMaxTries:     getEnvInt("POLL_MAX_ATTEMPTS", 100),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 10)) * 1024 * 1024,
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		SubscribeTimeout: time.Second * time.Duration(getEnvInt("SUBSCRIBE_TIMEOUT_SECONDS", 90)),
	}

	if cfg.FalAPIKey == "" {
		return nil, fmt.Errorf("FAL_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
