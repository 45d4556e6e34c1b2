package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, "http://localhost:5000", cfg.DatasetURL)
	assert.Empty(t, cfg.DatasetFile)
	assert.Equal(t, 60*time.Second, cfg.DatasetTimeout)
	assert.Equal(t, 4, cfg.DatasetCacheSize)
	assert.InDelta(t, 1.0, cfg.DatasetRateLimit, 1e-9)
	assert.Equal(t, 1, cfg.ResampleHours)

	assert.Equal(t, 500*time.Millisecond, cfg.PlaybackBaseDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.LayerRetryInterval)
	assert.Equal(t, 5*time.Second, cfg.NoticeTTL)
	assert.Equal(t, 2*time.Second, cfg.FrameApplyTimeout)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "streamflow-frames", cfg.KafkaFrameTopic)
	assert.Equal(t, "streamflow-reloads", cfg.KafkaReloadTopic)
	assert.Equal(t, "streamflow-animator", cfg.KafkaGroupID)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATASET_URL", "http://flask:5000")
	t.Setenv("DATASET_FILE", "/data/fixture.json")
	t.Setenv("DATASET_TIMEOUT", "2m")
	t.Setenv("DATASET_CACHE_SIZE", "8")
	t.Setenv("DATASET_RATE_LIMIT", "0.5")
	t.Setenv("RESAMPLE_HOURS", "6")
	t.Setenv("PLAYBACK_BASE_DELAY", "250ms")
	t.Setenv("LAYER_RETRY_INTERVAL", "50ms")
	t.Setenv("NOTICE_TTL", "10s")
	t.Setenv("FRAME_APPLY_TIMEOUT", "750ms")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_FRAME_TOPIC", "custom-frames")
	t.Setenv("KAFKA_RELOAD_TOPIC", "custom-reloads")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://flask:5000", cfg.DatasetURL)
	assert.Equal(t, "/data/fixture.json", cfg.DatasetFile)
	assert.Equal(t, 2*time.Minute, cfg.DatasetTimeout)
	assert.Equal(t, 8, cfg.DatasetCacheSize)
	assert.InDelta(t, 0.5, cfg.DatasetRateLimit, 1e-9)
	assert.Equal(t, 6, cfg.ResampleHours)
	assert.Equal(t, 250*time.Millisecond, cfg.PlaybackBaseDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.LayerRetryInterval)
	assert.Equal(t, 10*time.Second, cfg.NoticeTTL)
	assert.Equal(t, 750*time.Millisecond, cfg.FrameApplyTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-frames", cfg.KafkaFrameTopic)
	assert.Equal(t, "custom-reloads", cfg.KafkaReloadTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"DATASET_TIMEOUT", "PLAYBACK_BASE_DELAY", "LAYER_RETRY_INTERVAL", "NOTICE_TTL", "FRAME_APPLY_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "bad")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_ZeroBaseDelay(t *testing.T) {
	t.Setenv("PLAYBACK_BASE_DELAY", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLAYBACK_BASE_DELAY")
}

func TestLoad_InvalidResampleHours(t *testing.T) {
	t.Setenv("RESAMPLE_HOURS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESAMPLE_HOURS")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("DATASET_RATE_LIMIT", "-2")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATASET_RATE_LIMIT")
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("DATASET_CACHE_SIZE", "nope")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.DatasetCacheSize)
}

func TestLoad_KafkaEnabledWithoutFrameTopic(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_FRAME_TOPIC", "")
	cfg, err := Load()
	// An empty value falls back to the default topic.
	require.NoError(t, err)
	assert.Equal(t, "streamflow-frames", cfg.KafkaFrameTopic)
}
