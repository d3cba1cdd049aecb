package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/ecom/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		type Config struct {
			Log   config.Log
			HTTP  config.HTTP
			Redis config.Redis
			Relay config.Relay
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.Equal(t, []string{"*"}, cfg.HTTP.CorsOrigins)
		assert.Empty(t, cfg.Redis.Addr)
		assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
		assert.Equal(t, time.Second, cfg.Relay.Interval)
	})

	t.Run("Should read environment", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("KAFKA_ADDRESSES", "k1:9092,k2:9092")
		t.Setenv("KAFKA_GROUP", "ecom")

		type Config struct {
			Log   config.Log
			Kafka config.Kafka
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addresses)
	})

	t.Run("Should fail on missing required variable", func(t *testing.T) {
		type Config struct {
			Kafka config.Kafka
		}

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should fail on unknown log format", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")

		type Config struct {
			Log config.Log
		}

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}
