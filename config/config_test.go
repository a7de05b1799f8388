package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, 100, cfg.Reorder.DefaultLevel)
	assert.True(t, cfg.Reorder.ZeroIsAbsent)
	assert.Equal(t, 7, cfg.ML.ForecastDays)
	assert.Equal(t, 30*time.Second, cfg.ML.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("REORDER_DEFAULT_LEVEL", "250")
	t.Setenv("REORDER_ZERO_IS_ABSENT", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ML_TIMEOUT_SECONDS", "5")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "not-a-number")

	cfg := LoadEnv()

	assert.Equal(t, 250, cfg.Reorder.DefaultLevel)
	assert.False(t, cfg.Reorder.ZeroIsAbsent)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.ML.Timeout)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns, "unparsable values fall back")
}

func TestValidate(t *testing.T) {
	cfg := LoadEnv()
	cfg.ML.APIKey = "secret"
	require.NoError(t, cfg.Validate())

	cfg.ML.APIKey = ""
	cfg.Reorder.DefaultLevel = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ML_API_KEY")
	assert.Contains(t, err.Error(), "default level")
}

func TestValidate_ZeroDefaultLevel(t *testing.T) {
	t.Setenv("REORDER_DEFAULT_LEVEL", "0")
	cfg := LoadEnv()
	cfg.ML.APIKey = "secret"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reorder default level must be positive, got 0")
}
