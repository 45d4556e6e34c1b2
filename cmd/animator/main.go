package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/streamflow-animator/internal/adapter/dataset"
	"github.com/couchcryptid/streamflow-animator/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/streamflow-animator/internal/adapter/kafka"
	"github.com/couchcryptid/streamflow-animator/internal/adapter/maplayer"
	"github.com/couchcryptid/streamflow-animator/internal/config"
	"github.com/couchcryptid/streamflow-animator/internal/engine"
	"github.com/couchcryptid/streamflow-animator/internal/observability"
	"github.com/couchcryptid/streamflow-animator/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// DATASET_FILE replaces the dataset service for offline runs.
	var loader engine.Loader
	if cfg.DatasetFile != "" {
		loader = dataset.NewFileLoader(cfg.DatasetFile, logger)
		logger.Info("loading dataset from file", "path", cfg.DatasetFile)
	} else {
		client := dataset.NewClient(cfg.DatasetURL, cfg.DatasetTimeout, logger)
		limited := dataset.NewRateLimitedLoader(client, cfg.DatasetRateLimit, 1)
		loader = dataset.NewCachedLoader(limited, cfg.DatasetCacheSize, metrics)
		logger.Info("loading dataset from service",
			"url", cfg.DatasetURL,
			"cache_size", cfg.DatasetCacheSize,
			"rate_limit", cfg.DatasetRateLimit,
		)
	}

	frames := maplayer.NewStore()
	layer := render.Layer(frames)

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		layer = maplayer.Fanout{frames, writer}
		logger.Info("kafka frame publishing enabled", "topic", cfg.KafkaFrameTopic, "brokers", cfg.KafkaBrokers)
	}

	eng := engine.New(loader, layer, engine.Options{
		BaseDelay:     cfg.PlaybackBaseDelay,
		RetryInterval: cfg.LayerRetryInterval,
		NoticeTTL:     cfg.NoticeTTL,
		ResampleHours: cfg.ResampleHours,
		FrameTimeout:  cfg.FrameApplyTimeout,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, frames, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start deferred frame delivery.
	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("render loop error", "error", err)
		}
	}()

	var listener *kafkaadapter.ReloadListener
	if cfg.KafkaEnabled {
		listener = kafkaadapter.NewReloadListener(cfg, eng, logger)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reload listener error", "error", err)
			}
		}()
	}

	// Initial load. A failure is surfaced as a notice and the service keeps
	// running so the UI can retry.
	if err := eng.Reload(ctx); err != nil {
		logger.Error("initial load failed", "error", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	eng.Pause()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if listener != nil {
		if err := listener.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
