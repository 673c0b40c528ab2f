package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hotelbooking/internal/domain/inventory"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	LogLevel           string
	HTTPAddr           string
	CORSOrigins        []string
	StorageMode        string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	NotifyTopic        string
	NotifyTimeout      time.Duration
	PaymentsTopic      string
	PaymentsGroup      string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
	ScyllaHosts        []string
	ScyllaKeyspace     string
	ScyllaUsername     string
	ScyllaPassword     string
	ScyllaTimeout      time.Duration
	GRPCAddr           string
	CalendarDays       int
	WeekendDays        inventory.WeekendDays
	RoomsFixtures      string
	ShutdownTimeout    time.Duration
	ReconcileInterval  time.Duration
	ConflictRetries    int
	OutboxMaxAttempts  int
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:      parseList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StorageMode:      strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "hotelbooking"),
		KafkaBrokers:     parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		NotifyTopic:      getEnv("NOTIFY_TOPIC", "notifications.email.v1"),
		PaymentsTopic:    getEnv("PAYMENTS_TOPIC", "payments.events.v1"),
		PaymentsGroup:    getEnv("PAYMENTS_GROUP", "hotelbooking-payments"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         getEnv("S3_BUCKET", "hotelbooking-receipts"),
		ScyllaHosts:      parseList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaKeyspace:   getEnv("SCYLLA_KEYSPACE", "hotelbooking"),
		ScyllaUsername:   os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword:   os.Getenv("SCYLLA_PASSWORD"),
		GRPCAddr:         os.Getenv("GRPC_ADDR"),
		RoomsFixtures:    os.Getenv("ROOMS_FIXTURES"),
	}

	var err error
	if cfg.NotifyTimeout, err = parseDurationEnv("NOTIFY_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.ScyllaTimeout, err = parseDurationEnv("SCYLLA_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileInterval, err = parseDurationEnv("RECONCILE_INTERVAL", 0); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileInterval < 0 {
		return Config{}, fmt.Errorf("RECONCILE_INTERVAL must not be negative")
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.ConflictRetries, err = parseIntEnv("CONFLICT_RETRIES", 2); err != nil {
		return Config{}, err
	}
	if cfg.ConflictRetries < 0 {
		return Config{}, fmt.Errorf("CONFLICT_RETRIES must not be negative")
	}
	if cfg.OutboxMaxAttempts, err = parseIntEnv("OUTBOX_MAX_ATTEMPTS", 20); err != nil {
		return Config{}, err
	}
	if cfg.CalendarDays, err = parseIntEnv("CALENDAR_DAYS", 183); err != nil {
		return Config{}, err
	}
	if cfg.CalendarDays < 1 || cfg.CalendarDays > inventory.MaxCalendarDays {
		return Config{}, fmt.Errorf("CALENDAR_DAYS must be between 1 and %d", inventory.MaxCalendarDays)
	}
	if cfg.WeekendDays, err = inventory.ParseWeekendDays(getEnv("WEEKEND_DAYS", "Fri,Sat")); err != nil {
		return Config{}, fmt.Errorf("invalid WEEKEND_DAYS: %w", err)
	}

	for _, raw := range parseList(getEnv("RETRY_BACKOFF", "1s,5s,30s")) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	switch cfg.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_MODE %q", cfg.StorageMode)
	}
	return cfg, nil
}

func (c Config) KafkaEnabled() bool  { return len(c.KafkaBrokers) > 0 }
func (c Config) S3Enabled() bool     { return c.S3Endpoint != "" }
func (c Config) ScyllaEnabled() bool { return len(c.ScyllaHosts) > 0 }
func (c Config) GRPCEnabled() bool   { return c.GRPCAddr != "" }
func (c Config) SweepEnabled() bool  { return c.ReconcileInterval > 0 }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
