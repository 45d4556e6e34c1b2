package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/streamflow-animator/internal/config"
)

// Reloader is the engine surface a reload request drives.
type Reloader interface {
	Reload(ctx context.Context) error
	SetResampleInterval(ctx context.Context, hours int) error
}

// ReloadRequest is the body of a reload trigger message. A zero
// ResampleHours reloads at the current interval.
type ReloadRequest struct {
	ResampleHours int `json:"resample_hours"`
}

// messageReader is the subset of *kafkago.Reader the listener needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ReloadListener consumes reload triggers, typically published when an
// upstream model run finishes writing new output.
type ReloadListener struct {
	reader   messageReader
	reloader Reloader
	logger   *slog.Logger
}

// NewReloadListener creates a consumer-group reader for the reload topic.
func NewReloadListener(cfg *config.Config, reloader Reloader, logger *slog.Logger) *ReloadListener {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaReloadTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &ReloadListener{reader: r, reloader: reloader, logger: logger}
}

// Run fetches and handles reload requests until ctx is cancelled. Fetch
// failures back off exponentially from 200ms up to 5s.
func (l *ReloadListener) Run(ctx context.Context) error {
	l.logger.Info("reload listener started")
	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("reload listener stopping", "reason", ctx.Err())
				return nil
			}
			l.logger.Error("fetch reload message failed", "error", err)
			if !sharedretry.SleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = sharedretry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		l.handle(ctx, msg)

		if err := l.reader.CommitMessages(ctx, msg); err != nil {
			l.logger.Warn("commit offset failed", "error", err,
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

func (l *ReloadListener) handle(ctx context.Context, msg kafkago.Message) {
	req, err := mapMessageToReloadRequest(msg)
	if err != nil {
		l.logger.Warn("invalid reload message, skipping", "error", err, "offset", msg.Offset)
		return
	}

	if req.ResampleHours > 0 {
		err = l.reloader.SetResampleInterval(ctx, req.ResampleHours)
	} else {
		err = l.reloader.Reload(ctx)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.logger.Warn("reload trigger failed", "error", err, "resample_hours", req.ResampleHours)
		}
		return
	}
	l.logger.Info("reload triggered", "resample_hours", req.ResampleHours, "offset", msg.Offset)
}

func (l *ReloadListener) Close() error {
	return l.reader.Close()
}

// mapMessageToReloadRequest decodes a reload message. An empty value is a
// plain reload.
func mapMessageToReloadRequest(msg kafkago.Message) (ReloadRequest, error) {
	var req ReloadRequest
	if len(msg.Value) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return ReloadRequest{}, fmt.Errorf("decode reload request: %w", err)
	}
	if req.ResampleHours < 0 {
		return ReloadRequest{}, fmt.Errorf("decode reload request: negative resample_hours %d", req.ResampleHours)
	}
	return req, nil
}
