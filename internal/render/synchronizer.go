// Package render pushes frames for the current time index to the map layer,
// deferring them while the layer is not yet available.
package render

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
	"github.com/couchcryptid/streamflow-animator/internal/observability"
)

// Layer is the map layer collaborator that draws frames.
type Layer interface {
	// Ready reports whether the layer can accept a frame right now.
	Ready() bool
	// Apply replaces the styles of every feature in one update.
	Apply(ctx context.Context, frame Frame) error
}

// Synchronizer turns (snapshot, index) pairs into frames and delivers them.
// When the layer is not ready, the newest frame waits as pending and Run
// retries it every retryInterval. Older pending frames are dropped.
type Synchronizer struct {
	layer         Layer
	clock         clockwork.Clock
	retryInterval time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics

	mu      sync.Mutex
	pending *sequencedFrame
	seq     uint64

	deliverMu sync.Mutex
	delivered uint64

	wake chan struct{}
}

type sequencedFrame struct {
	seq   uint64
	frame Frame
}

// NewSynchronizer creates a Synchronizer. Call Run to enable deferred delivery.
func NewSynchronizer(layer Layer, clock clockwork.Clock, retryInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Synchronizer {
	return &Synchronizer{
		layer:         layer,
		clock:         clock,
		retryInterval: retryInterval,
		logger:        logger,
		metrics:       metrics,
		wake:          make(chan struct{}, 1),
	}
}

// UpdateForTime builds the frame for index and applies it, or leaves it
// pending when the layer is not ready. A not-ready layer is not an error.
func (s *Synchronizer) UpdateForTime(ctx context.Context, snap *domain.Snapshot, index int) error {
	start := s.clock.Now()
	frame := BuildFrame(snap, index)
	s.metrics.FrameBuildDuration.Observe(s.clock.Since(start).Seconds())

	s.mu.Lock()
	s.seq++
	sf := sequencedFrame{seq: s.seq, frame: frame}
	if !s.layer.Ready() {
		s.pending = &sf
		s.mu.Unlock()
		s.metrics.LayerNotReady.Inc()
		s.logger.Debug("map layer not ready, frame deferred", "snapshot_id", frame.SnapshotID, "index", index)
		s.signal()
		return nil
	}
	s.pending = nil
	s.mu.Unlock()

	return s.deliver(ctx, sf)
}

// ValueAt reads flow, velocity, and depth for one feature at index.
func (s *Synchronizer) ValueAt(snap *domain.Snapshot, id domain.FeatureID, index int) domain.Reading {
	return snap.ValueAt(id, index)
}

// Pending reports whether a frame is waiting for the layer.
func (s *Synchronizer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Run polls layer readiness while a frame is pending and delivers it once the
// layer appears. It returns when ctx is cancelled.
func (s *Synchronizer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}

		for !s.flushPending(ctx) {
			select {
			case <-ctx.Done():
				return nil
			case <-s.clock.After(s.retryInterval):
			}
		}
	}
}

// flushPending delivers the pending frame if the layer is ready. It returns
// false when a frame is still waiting.
func (s *Synchronizer) flushPending(ctx context.Context) bool {
	s.mu.Lock()
	sf := s.pending
	if sf == nil {
		s.mu.Unlock()
		return true
	}
	if !s.layer.Ready() {
		s.mu.Unlock()
		return false
	}
	s.pending = nil
	s.mu.Unlock()

	if err := s.deliver(ctx, *sf); err != nil {
		s.logger.Warn("deferred frame delivery failed", "error", err, "index", sf.frame.Index)
	}
	return true
}

func (s *Synchronizer) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// deliver applies frames in sequence order, skipping any frame older than
// one already applied.
func (s *Synchronizer) deliver(ctx context.Context, sf sequencedFrame) error {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if sf.seq <= s.delivered {
		return nil
	}
	if err := s.layer.Apply(ctx, sf.frame); err != nil {
		s.metrics.LayerErrors.Inc()
		return err
	}
	s.delivered = sf.seq
	s.metrics.FramesRendered.Inc()
	return nil
}
