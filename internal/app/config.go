package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	DownloadDir        string
	CatalogBaseURL     string
	CatalogCacheTTL    time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	PollInterval       time.Duration
	ReadinessInterval  time.Duration
	SessionIdleTimeout time.Duration
	AllowedOrigins     []string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DownloadDir:        getEnv("DOWNLOAD_DIR", "downloads"),
		CatalogBaseURL:     getEnv("YTS_BASE_URL", ""),
		CatalogCacheTTL:    getEnvDuration("CATALOG_CACHE_TTL", 15*time.Minute),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            int(getEnvInt64("REDIS_DB", 0)),
		PollInterval:       getEnvDuration("POLL_INTERVAL", time.Second),
		ReadinessInterval:  getEnvDuration("READINESS_INTERVAL", 2*time.Second),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 24*time.Hour),
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
