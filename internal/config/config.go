package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string

	// RabbitMQ
	RabbitURL      string
	RabbitExchange string

	// Redis: hot counters + reaction aggregate cache. Empty means in-process store (dev only).
	RedisURL         string
	ReactionCacheTTL time.Duration

	// Visitor identity
	VisitorHashSalt      string
	VisitorUnknownBucket string

	// View ingestion
	ViewDedupTTL    time.Duration
	IngestWorkers   int
	IngestQueueSize int
	IngestOpTimeout time.Duration

	// Sync reconciler
	SyncEnabled     bool
	SyncInterval    time.Duration
	SyncMaxDuration time.Duration
	CronSecret      string

	// Rate Limiting
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func (c *Config) IsDev() bool { return c.AppEnv == "dev" }

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8086")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "engagement.events")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.ReactionCacheTTL = getDuration("REACTION_CACHE_TTL", 5*time.Minute)

	cfg.VisitorHashSalt = getEnv("VISITOR_HASH_SALT", "")
	cfg.VisitorUnknownBucket = getEnv("VISITOR_UNKNOWN_BUCKET", "unknown")

	cfg.ViewDedupTTL = getDuration("VIEW_DEDUP_TTL", 24*time.Hour)
	cfg.IngestWorkers = getIntEnv("INGEST_WORKERS", 4)
	cfg.IngestQueueSize = getIntEnv("INGEST_QUEUE_SIZE", 1024)
	cfg.IngestOpTimeout = getDuration("INGEST_OP_TIMEOUT", 250*time.Millisecond)

	cfg.SyncEnabled = getBool("SYNC_ENABLED", true)
	cfg.SyncInterval = getDuration("SYNC_INTERVAL", time.Hour)
	cfg.SyncMaxDuration = getDuration("SYNC_MAX_DURATION", 2*time.Minute)
	cfg.CronSecret = getEnv("CRON_SECRET", "")

	// Rate Limiting Defaults: 300 reqs / 1 min; view beacons are chatty
	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 300)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", 1*time.Minute)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.IngestWorkers <= 0 || cfg.IngestQueueSize <= 0 {
		return nil, fmt.Errorf("INGEST_WORKERS and INGEST_QUEUE_SIZE must be positive")
	}
	if cfg.ViewDedupTTL <= 0 {
		return nil, fmt.Errorf("VIEW_DEDUP_TTL must be positive")
	}

	if !cfg.IsDev() {
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("missing REDIS_URL (required when APP_ENV != dev)")
		}
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing RABBIT_URL (required when APP_ENV != dev)")
		}
		if cfg.VisitorHashSalt == "" {
			return nil, fmt.Errorf("missing VISITOR_HASH_SALT (required when APP_ENV != dev)")
		}
		if cfg.CronSecret == "" {
			return nil, fmt.Errorf("missing CRON_SECRET (required when APP_ENV != dev)")
		}
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
