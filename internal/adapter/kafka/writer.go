package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/streamflow-animator/internal/config"
	"github.com/couchcryptid/streamflow-animator/internal/render"
)

// messageWriter is the subset of *kafkago.Writer the frame writer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes rendered frames to a Kafka topic.
// It implements render.Layer.
type Writer struct {
	writer messageWriter
	closed atomic.Bool
	logger *slog.Logger
}

// frameBatchTimeout caps how long a frame waits in the producer batch. Apply
// runs on the playback tick, so frames are flushed one at a time.
const frameBatchTimeout = 5 * time.Millisecond

// NewWriter creates a Kafka producer for the configured frame topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFrameTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchSize:    1,
		BatchTimeout: frameBatchTimeout,
	}
	return &Writer{writer: w, logger: logger}
}

// Ready reports whether the producer is still open.
func (w *Writer) Ready() bool {
	return !w.closed.Load()
}

// Apply serializes frame and publishes it keyed by snapshot id, so every frame
// of one load lands on the same partition in order.
func (w *Writer) Apply(ctx context.Context, frame render.Frame) error {
	msg, err := serializeFrame(frame)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish frame %d: %w", frame.Index, err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.closed.Store(true)
	return w.writer.Close()
}

// serializeFrame marshals a Frame into a Kafka message.
func serializeFrame(frame render.Frame) (kafkago.Message, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize frame: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(frame.SnapshotID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "snapshot_id", Value: []byte(frame.SnapshotID)},
			{Key: "time_index", Value: []byte(strconv.Itoa(frame.Index))},
			{Key: "time", Value: []byte(frame.Time)},
		},
	}, nil
}
