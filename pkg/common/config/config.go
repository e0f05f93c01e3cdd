package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaGroupID string

	// Legacy import
	LegacyConnectTimeout time.Duration
	LegacyReadTimeout    time.Duration
	ImportProfilePath    string
	ImportLockTTL        time.Duration
	ImportLockEnabled    bool
	ImportRequestTopic   string
	ImportEventTopic     string
	ImportWorkerGroupID  string
	ImportRunTimeout     time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 10*time.Minute),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "erp"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "erp"),
		PostgresDB:       getEnv("POSTGRES_DB", "erp"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "erp-migrate"),

		LegacyConnectTimeout: getDuration("LEGACY_CONNECT_TIMEOUT", 10*time.Second),
		LegacyReadTimeout:    getDuration("LEGACY_READ_TIMEOUT", 30*time.Second),
		ImportProfilePath:    getEnv("LEGACY_IMPORT_PROFILE", ""),
		ImportLockTTL:        getDuration("LEGACY_IMPORT_LOCK_TTL", 2*time.Hour),
		ImportLockEnabled:    getBoolEnv("LEGACY_IMPORT_LOCK_ENABLED", true),
		ImportRequestTopic:   getEnv("LEGACY_IMPORT_REQUEST_TOPIC", ""),
		ImportEventTopic:     getEnv("LEGACY_IMPORT_EVENT_TOPIC", ""),
		ImportWorkerGroupID:  getEnv("LEGACY_IMPORT_WORKER_GROUP", "legacy-import-worker"),
		ImportRunTimeout:     getDuration("LEGACY_IMPORT_RUN_TIMEOUT", 2*time.Hour),
	}
}

// LoadDotEnv loads the given env files (".env" when none are named) into
// the process environment. Variables already set are left alone.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
