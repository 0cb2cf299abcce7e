package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	QueueModeRedis  = "redis"
	QueueModeMemory = "memory"
)

// Config is the full configuration surface of the gateway, read once at
// startup from the environment.
type Config struct {
	DefaultProcessorURL   string
	FallbackProcessorURL  string
	RedisURL              string
	Port                  string
	HealthCheckInterval   time.Duration
	NumWorkers            int
	RetriesBeforeFallback int64
	InstanceName          string
	QueueMode             string
}

func Load() Config {
	return Config{
		DefaultProcessorURL:   envString("DEFAULT_PROCESSOR_URL", "http://localhost:8001"),
		FallbackProcessorURL:  envString("FALLBACK_PROCESSOR_URL", "http://localhost:8002"),
		RedisURL:              envString("REDIS_URL", "localhost:6379"),
		Port:                  envString("PORT", ":9999"),
		HealthCheckInterval:   envDuration("HEALTH_CHECK_INTERVAL", 4*time.Second),
		NumWorkers:            envInt("NUM_WORKERS", 4),
		RetriesBeforeFallback: int64(envInt("RETRIES_BEFORE_FALLBACK", 16)),
		InstanceName:          envString("INSTANCE_NAME", "instance-"+uuid.NewString()),
		QueueMode:             envString("QUEUE_MODE", QueueModeRedis),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
