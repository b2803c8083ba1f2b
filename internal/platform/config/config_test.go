package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 500, cfg.ErrorMaxLength)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 120, cfg.RateLimit.PerMinute)
	assert.Equal(t, "party.events", cfg.Kafka.Topic)
	assert.False(t, cfg.UsePostgres())
	assert.False(t, cfg.UseRedis())
	assert.False(t, cfg.UseKafka())
	assert.False(t, cfg.AuthEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PARTY_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://party@localhost/party")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ERROR_MAX_LENGTH", "120")
	t.Setenv("DB_TX_TIMEOUT", "2s")
	t.Setenv("AUTH_SIGNING_KEY", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 120, cfg.ErrorMaxLength)
	assert.Equal(t, 2*time.Second, cfg.Database.TxTimeout)
	assert.True(t, cfg.AuthEnabled())
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"ERROR_MAX_LENGTH":      "3",
		"RATE_LIMIT_PER_MINUTE": "-1",
		"OUTBOX_BATCH_SIZE":     "0",
		"SHUTDOWN_TIMEOUT":      "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
