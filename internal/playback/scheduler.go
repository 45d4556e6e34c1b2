// Package playback owns the current time index and advances it on a timer
// while playing.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/streamflow-animator/internal/observability"
)

var (
	// ErrIndexOutOfRange is returned by Seek for an index outside the time axis.
	ErrIndexOutOfRange = errors.New("time index out of range")
	// ErrInvalidSpeed is returned by SetSpeed for a non-positive multiplier.
	ErrInvalidSpeed = errors.New("speed multiplier must be positive")
	// ErrEmptyTimeAxis is returned by Play when there is nothing to animate.
	ErrEmptyTimeAxis = errors.New("time axis is empty")
)

// State is a point-in-time copy of the scheduler's playback state.
type State struct {
	Index    int     `json:"index"`
	Playing  bool    `json:"playing"`
	Speed    float64 `json:"speed"`
	NumTimes int     `json:"num_times"`
}

// Scheduler is a two-state machine (stopped, playing) that advances the time
// index by one every baseDelay/speed while playing.
//
// Every Play starts a new generation. A pending tick only fires its callback
// when its generation is still current, so Pause and Reset cancel pending
// ticks synchronously even if the timer has already expired.
//
// emitMu is held from a tick's generation check until its callback returns.
// Seek, Pause, and Reset take it first, so once they return no stale tick can
// still be notifying, and a seek's frame is always the last one delivered.
type Scheduler struct {
	emitMu    sync.Mutex
	mu        sync.Mutex
	clock     clockwork.Clock
	baseDelay time.Duration
	onChange  func(index int)
	logger    *slog.Logger
	metrics   *observability.Metrics

	index    int
	numTimes int
	playing  bool
	speed    float64
	gen      uint64
	timer    clockwork.Timer
}

// New creates a stopped Scheduler at index 0 with speed 1. onChange is called
// outside the scheduler lock whenever the index moves.
func New(clock clockwork.Clock, baseDelay time.Duration, onChange func(index int), logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		clock:     clock,
		baseDelay: baseDelay,
		onChange:  onChange,
		logger:    logger,
		metrics:   metrics,
		speed:     1,
	}
}

// State returns a copy of the current playback state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Index: s.index, Playing: s.playing, Speed: s.speed, NumTimes: s.numTimes}
}

// Play starts advancing from the current index. Calling Play while already
// playing is a no-op.
func (s *Scheduler) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.numTimes == 0 {
		return ErrEmptyTimeAxis
	}
	if s.playing {
		return nil
	}
	s.playing = true
	s.gen++
	s.scheduleLocked()
	s.metrics.PlaybackPlaying.Set(1)
	s.logger.Debug("playback started", "index", s.index, "speed", s.speed)
	return nil
}

// Pause stops playback. A tick that is already pending will not advance the
// index, and a tick already notifying finishes before Pause returns.
func (s *Scheduler) Pause() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Seek pauses playback and jumps to index.
func (s *Scheduler) Seek(index int) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if index < 0 || index >= s.numTimes {
		n := s.numTimes
		s.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, n)
	}
	s.stopLocked()
	s.index = index
	s.mu.Unlock()

	s.onChange(index)
	return nil
}

// SetSpeed changes the speed multiplier. It takes effect from the next
// scheduled tick; a tick already pending keeps its delay.
func (s *Scheduler) SetSpeed(multiplier float64) error {
	if !(multiplier > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, multiplier)
	}
	s.mu.Lock()
	s.speed = multiplier
	s.mu.Unlock()
	return nil
}

// Reset stops playback and rewinds to index 0 over a time axis of numTimes
// entries. It does not notify; the caller renders the first frame itself.
func (s *Scheduler) Reset(numTimes int) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.index = 0
	s.numTimes = numTimes
}

func (s *Scheduler) stopLocked() {
	if !s.playing {
		return
	}
	s.playing = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.metrics.PlaybackPlaying.Set(0)
	s.logger.Debug("playback paused", "index", s.index)
}

func (s *Scheduler) scheduleLocked() {
	gen := s.gen
	delay := time.Duration(float64(s.baseDelay) / s.speed)
	s.timer = s.clock.AfterFunc(delay, func() { s.tick(gen) })
}

func (s *Scheduler) tick(gen uint64) {
	s.emitMu.Lock()
	s.mu.Lock()
	if !s.playing || gen != s.gen || s.numTimes == 0 {
		s.mu.Unlock()
		s.emitMu.Unlock()
		return
	}
	s.index = (s.index + 1) % s.numTimes
	index := s.index
	s.mu.Unlock()

	s.metrics.PlaybackTicks.Inc()
	s.onChange(index)
	s.emitMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing && gen == s.gen {
		s.scheduleLocked()
	}
}
