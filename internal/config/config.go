package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset service configuration.
	DatasetURL       string
	DatasetFile      string
	DatasetTimeout   time.Duration
	DatasetCacheSize int
	DatasetRateLimit float64
	ResampleHours    int

	// Playback and rendering.
	PlaybackBaseDelay  time.Duration
	LayerRetryInterval time.Duration
	NoticeTTL          time.Duration
	FrameApplyTimeout  time.Duration

	// Kafka frame publishing and reload triggers.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaFrameTopic  string
	KafkaReloadTopic string
	KafkaGroupID     string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	datasetTimeout, err := parsePositiveDuration("DATASET_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	baseDelay, err := parsePositiveDuration("PLAYBACK_BASE_DELAY", "500ms")
	if err != nil {
		return nil, err
	}
	retryInterval, err := parsePositiveDuration("LAYER_RETRY_INTERVAL", "100ms")
	if err != nil {
		return nil, err
	}
	noticeTTL, err := parsePositiveDuration("NOTICE_TTL", "5s")
	if err != nil {
		return nil, err
	}

	frameApplyTimeout, err := parsePositiveDuration("FRAME_APPLY_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}

	resampleHours, err := parsePositiveInt("RESAMPLE_HOURS", 1)
	if err != nil {
		return nil, err
	}

	rateLimit, err := parseRateLimit()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetURL:       sharedcfg.EnvOrDefault("DATASET_URL", "http://localhost:5000"),
		DatasetFile:      os.Getenv("DATASET_FILE"),
		DatasetTimeout:   datasetTimeout,
		DatasetCacheSize: parseDatasetCacheSize(),
		DatasetRateLimit: rateLimit,
		ResampleHours:    resampleHours,

		PlaybackBaseDelay:  baseDelay,
		LayerRetryInterval: retryInterval,
		NoticeTTL:          noticeTTL,
		FrameApplyTimeout:  frameApplyTimeout,

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFrameTopic:  sharedcfg.EnvOrDefault("KAFKA_FRAME_TOPIC", "streamflow-frames"),
		KafkaReloadTopic: sharedcfg.EnvOrDefault("KAFKA_RELOAD_TOPIC", "streamflow-reloads"),
		KafkaGroupID:     sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "streamflow-animator"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaFrameTopic == "" {
			return nil, errors.New("KAFKA_FRAME_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be an integer >= 1", key)
	}
	return n, nil
}

func parseRateLimit() (float64, error) {
	s := os.Getenv("DATASET_RATE_LIMIT")
	if s == "" {
		return 1, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("invalid DATASET_RATE_LIMIT: must be a positive number")
	}
	return v, nil
}

func parseDatasetCacheSize() int {
	if s := os.Getenv("DATASET_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 4
}
