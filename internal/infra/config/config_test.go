package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/domain/inventory"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("RECONCILE_INTERVAL", "")
	t.Setenv("CONFLICT_RETRIES", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageMode)
	assert.Equal(t, 183, cfg.CalendarDays)
	assert.Equal(t, inventory.DefaultWeekend, cfg.WeekendDays)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.SweepEnabled())
	assert.Equal(t, 2, cfg.ConflictRetries)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("WEEKEND_DAYS", "sat,sun")
	t.Setenv("CALENDAR_DAYS", "30")
	t.Setenv("S3_USE_SSL", "yes")
	t.Setenv("RECONCILE_INTERVAL", "15m")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, inventory.WeekendDays{time.Saturday, time.Sunday}, cfg.WeekendDays)
	assert.Equal(t, 30, cfg.CalendarDays)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
	assert.True(t, cfg.SweepEnabled())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"mongo without uri": {"STORAGE_MODE", "mongo"},
		"unknown storage":   {"STORAGE_MODE", "redis"},
		"calendar too long": {"CALENDAR_DAYS", "1000"},
		"bad weekday":       {"WEEKEND_DAYS", "Funday"},
		"bad duration":      {"NOTIFY_TIMEOUT", "soon"},
		"bad bool":          {"S3_USE_SSL", "maybe"},
		"negative sweep":    {"RECONCILE_INTERVAL", "-1m"},
		"negative retries":  {"CONFLICT_RETRIES", "-1"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MONGO_URI", "")
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
