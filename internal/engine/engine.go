// Package engine ties the snapshot, the playback scheduler, the render
// synchronizer, and the series inspector together behind one API. UI and
// transport adapters only ever call Engine methods.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
	"github.com/couchcryptid/streamflow-animator/internal/observability"
	"github.com/couchcryptid/streamflow-animator/internal/playback"
	"github.com/couchcryptid/streamflow-animator/internal/render"
)

var (
	// ErrReloadInProgress is returned when a load is requested while another one is running.
	ErrReloadInProgress = errors.New("reload already in progress")
	// ErrNoSnapshot is returned by operations that need loaded data.
	ErrNoSnapshot = errors.New("no dataset loaded")
	// ErrInvalidInterval is returned for a resample interval below 1.
	ErrInvalidInterval = errors.New("resample interval must be >= 1")

	// Playback errors surfaced through Seek and SetSpeed.
	ErrIndexOutOfRange = playback.ErrIndexOutOfRange
	ErrInvalidSpeed    = playback.ErrInvalidSpeed
)

// Loader fetches a dataset already resampled to interval hours.
type Loader interface {
	Load(ctx context.Context, interval int) (domain.Dataset, error)
}

// Invalidator is implemented by loaders that cache datasets. An explicit
// reload clears the cache so it always reaches the source.
type Invalidator interface {
	Invalidate()
}

// Options tunes timing and the initial resample interval.
type Options struct {
	Clock         clockwork.Clock
	BaseDelay     time.Duration
	RetryInterval time.Duration
	NoticeTTL     time.Duration
	ResampleHours int
	// FrameTimeout bounds how long one playback frame may take to apply.
	FrameTimeout  time.Duration
}

const defaultFrameTimeout = 2 * time.Second

// Engine is the single owner of the current snapshot, playback state, and
// inspection state.
type Engine struct {
	loader    Loader
	scheduler *playback.Scheduler
	sync      *render.Synchronizer
	inspector *Inspector
	notices   *NoticeBoard
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	frameTimeout time.Duration

	// control orders playback commands against the start and end of a
	// reload, so nothing restarts playback while a load is in flight.
	control   sync.Mutex
	snapshot  atomic.Pointer[domain.Snapshot]
	reloading atomic.Bool
	interval  atomic.Int64
}

// New wires an Engine around loader and layer. Nothing is loaded until Reload.
func New(loader Loader, layer render.Layer, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ResampleHours < 1 {
		opts.ResampleHours = 1
	}
	if opts.FrameTimeout <= 0 {
		opts.FrameTimeout = defaultFrameTimeout
	}

	e := &Engine{
		loader:    loader,
		sync:      render.NewSynchronizer(layer, opts.Clock, opts.RetryInterval, logger, metrics),
		inspector: NewInspector(),
		notices:   NewNoticeBoard(opts.Clock, opts.NoticeTTL),
		clock:     opts.Clock,
		logger:    logger,
		metrics:   metrics,

		frameTimeout: opts.FrameTimeout,
	}
	e.scheduler = playback.New(opts.Clock, opts.BaseDelay, e.renderIndex, logger, metrics)
	e.interval.Store(int64(opts.ResampleHours))
	return e
}

// Run drives deferred frame delivery until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return e.sync.Run(ctx)
}

// Snapshot returns the current snapshot, or nil before the first successful load.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.snapshot.Load()
}

// CheckReadiness reports ready once a snapshot has been published.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.snapshot.Load() == nil {
		return ErrNoSnapshot
	}
	return nil
}

// Reload fetches the dataset at the current resample interval and publishes it.
func (e *Engine) Reload(ctx context.Context) error {
	if inv, ok := e.loader.(Invalidator); ok && !e.reloading.Load() {
		inv.Invalidate()
	}
	return e.reload(ctx, int(e.interval.Load()))
}

// SetResampleInterval reloads the dataset resampled to hours. The interval is
// kept only when the load succeeds.
func (e *Engine) SetResampleInterval(ctx context.Context, hours int) error {
	if hours < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, hours)
	}
	if err := e.reload(ctx, hours); err != nil {
		return err
	}
	e.interval.Store(int64(hours))
	return nil
}

// ResampleInterval returns the interval of the last successful load request.
func (e *Engine) ResampleInterval() int {
	return int(e.interval.Load())
}

// reload pauses playback, fetches and indexes the dataset, rewinds playback to
// the new axis and swaps the snapshot in one step, then renders the first
// frame. Play and Seek are rejected until it returns. On any failure the
// previous snapshot stays current.
func (e *Engine) reload(ctx context.Context, hours int) error {
	e.control.Lock()
	if !e.reloading.CompareAndSwap(false, true) {
		e.control.Unlock()
		e.metrics.Reloads.WithLabelValues("rejected").Inc()
		return ErrReloadInProgress
	}
	start := e.clock.Now()
	e.scheduler.Pause()
	e.control.Unlock()

	defer func() {
		e.control.Lock()
		e.reloading.Store(false)
		e.control.Unlock()
	}()

	ds, err := e.loader.Load(ctx, hours)
	if err != nil {
		return e.loadFailed(fmt.Errorf("load dataset: %w", err))
	}

	domain.LogReconciliation(domain.ReconcileFeatureIDs(ds), e.logger)

	snap, err := domain.BuildSnapshot(ds)
	if err != nil {
		return e.loadFailed(fmt.Errorf("build snapshot: %w", err))
	}

	e.control.Lock()
	e.scheduler.Reset(snap.NumTimes())
	e.snapshot.Store(snap)
	e.control.Unlock()

	e.metrics.Reloads.WithLabelValues("success").Inc()
	e.metrics.ReloadDuration.Observe(e.clock.Since(start).Seconds())
	e.metrics.SnapshotFeatures.Set(float64(snap.NumFeatures()))
	e.metrics.SnapshotTimes.Set(float64(snap.NumTimes()))
	e.logger.Info("snapshot published",
		"snapshot_id", snap.ID,
		"num_features", snap.NumFeatures(),
		"num_times", snap.NumTimes(),
		"resample_hours", snap.ResampleHours,
	)
	e.notices.Post(NoticeSuccess, fmt.Sprintf("Loaded %d features across %d timesteps", snap.NumFeatures(), snap.NumTimes()))

	if err := e.sync.UpdateForTime(ctx, snap, 0); err != nil {
		e.logger.Warn("initial frame not applied", "error", err, "snapshot_id", snap.ID)
	}
	return nil
}

func (e *Engine) loadFailed(err error) error {
	outcome := "error"
	if errors.Is(err, domain.ErrMalformedDataset) {
		outcome = "malformed"
	}
	e.metrics.Reloads.WithLabelValues(outcome).Inc()
	e.logger.Error("reload failed, keeping previous snapshot", "error", err)
	e.notices.Post(NoticeError, "Error loading data: "+err.Error())
	return err
}

// renderIndex is the scheduler's change callback.
func (e *Engine) renderIndex(index int) {
	snap := e.snapshot.Load()
	if snap == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.frameTimeout)
	defer cancel()
	if err := e.sync.UpdateForTime(ctx, snap, index); err != nil {
		e.logger.Warn("frame not applied", "error", err, "snapshot_id", snap.ID, "index", index)
	}
}

// Play starts playback from the current index. It is rejected while a reload
// is in flight.
func (e *Engine) Play() error {
	e.control.Lock()
	defer e.control.Unlock()
	if e.snapshot.Load() == nil {
		return ErrNoSnapshot
	}
	if e.reloading.Load() {
		return ErrReloadInProgress
	}
	return e.scheduler.Play()
}

// Pause stops playback.
func (e *Engine) Pause() {
	e.scheduler.Pause()
}

// Seek pauses and renders the frame at index. It is rejected while a reload
// is in flight.
func (e *Engine) Seek(index int) error {
	e.control.Lock()
	defer e.control.Unlock()
	if e.snapshot.Load() == nil {
		return ErrNoSnapshot
	}
	if e.reloading.Load() {
		return ErrReloadInProgress
	}
	return e.scheduler.Seek(index)
}

// SetSpeed changes the playback speed multiplier.
func (e *Engine) SetSpeed(multiplier float64) error {
	return e.scheduler.SetSpeed(multiplier)
}

// OnFeatureHover returns the values of id at the current time index.
func (e *Engine) OnFeatureHover(id string) (domain.Reading, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return domain.Reading{}, ErrNoSnapshot
	}
	return e.sync.ValueAt(snap, domain.NormalizeFeatureID(id), e.scheduler.State().Index), nil
}

// OnFeatureClick selects id in the inspector and returns its series.
func (e *Engine) OnFeatureClick(id string) (domain.Series, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return domain.Series{}, ErrNoSnapshot
	}
	return e.inspector.Select(snap, domain.NormalizeFeatureID(id)), nil
}

// ToggleVariable flips chart visibility for the named variable.
func (e *Engine) ToggleVariable(name string) (bool, error) {
	v, err := domain.ParseVariable(name)
	if err != nil {
		return false, err
	}
	return e.inspector.ToggleVariable(v), nil
}

// InspectorSeries returns the selected feature's series from the current
// snapshot, averaged over resample steps for the chart only.
func (e *Engine) InspectorSeries(resample int) (domain.Series, bool) {
	s, ok := e.inspector.Current(e.snapshot.Load())
	if !ok {
		return domain.Series{}, false
	}
	return s.Resample(resample), true
}

// Notice returns the live user-facing notice, if any.
func (e *Engine) Notice() (Notice, bool) {
	return e.notices.Current()
}

// Status is the combined view of playback, inspection, and snapshot metadata.
type Status struct {
	Playback      playback.State    `json:"playback"`
	Inspection    InspectionState   `json:"inspection"`
	Loaded        bool              `json:"loaded"`
	Reloading     bool              `json:"reloading"`
	SnapshotID    string            `json:"snapshot_id,omitempty"`
	Time          string            `json:"time,omitempty"`
	NumFeatures   int               `json:"num_features"`
	NumTimes      int               `json:"num_times"`
	ResampleHours int               `json:"resample_hours"`
	Bounds        *[4]float64       `json:"bounds,omitempty"`
	FlowRange     *domain.FlowRange `json:"flow_range,omitempty"`
	LoadedAt      *time.Time        `json:"loaded_at,omitempty"`
}

// State reports the engine's current status.
func (e *Engine) State() Status {
	st := Status{
		Playback:      e.scheduler.State(),
		Inspection:    e.inspector.State(),
		Reloading:     e.reloading.Load(),
		ResampleHours: e.ResampleInterval(),
	}
	snap := e.snapshot.Load()
	if snap == nil {
		return st
	}
	st.Loaded = true
	st.SnapshotID = snap.ID
	st.Time = snap.TimeAt(st.Playback.Index)
	st.NumFeatures = snap.NumFeatures()
	st.NumTimes = snap.NumTimes()
	st.ResampleHours = snap.ResampleHours
	bounds, rng, loadedAt := snap.Bounds, snap.Range, snap.LoadedAt
	st.Bounds = &bounds
	st.FlowRange = &rng
	st.LoadedAt = &loadedAt
	return st
}
