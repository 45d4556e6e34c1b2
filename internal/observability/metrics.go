package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the animation engine.
type Metrics struct {
	// Render metrics.
	FramesRendered     prometheus.Counter
	FrameBuildDuration prometheus.Histogram
	LayerNotReady      prometheus.Counter
	LayerErrors        prometheus.Counter

	// Playback metrics.
	PlaybackTicks   prometheus.Counter
	PlaybackPlaying prometheus.Gauge

	// Load metrics.
	Reloads          *prometheus.CounterVec // labels: outcome={success,malformed,error,rejected}
	ReloadDuration   prometheus.Histogram
	SnapshotFeatures prometheus.Gauge
	SnapshotTimes    prometheus.Gauge

	// Dataset loader cache.
	LoaderCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FramesRendered,
		m.FrameBuildDuration,
		m.LayerNotReady,
		m.LayerErrors,
		m.PlaybackTicks,
		m.PlaybackPlaying,
		m.Reloads,
		m.ReloadDuration,
		m.SnapshotFeatures,
		m.SnapshotTimes,
		m.LoaderCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamflow",
			Name:      "frames_rendered_total",
			Help:      "Total frames pushed to the map layer.",
		}),
		FrameBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "streamflow",
			Name:      "frame_build_duration_seconds",
			Help:      "Time to compute the styles of every feature for one frame.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		LayerNotReady: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamflow",
			Name:      "layer_not_ready_total",
			Help:      "Frames deferred because the map layer was not ready.",
		}),
		LayerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamflow",
			Name:      "layer_errors_total",
			Help:      "Frames the map layer failed to apply.",
		}),
		PlaybackTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamflow",
			Name:      "playback_ticks_total",
			Help:      "Time index advances made by the playback scheduler.",
		}),
		PlaybackPlaying: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamflow",
			Name:      "playback_playing",
			Help:      "1 while playback is running, 0 when stopped.",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamflow",
			Name:      "reloads_total",
			Help:      "Dataset load and resample requests by outcome.",
		}, []string{"outcome"}),
		ReloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "streamflow",
			Name:      "reload_duration_seconds",
			Help:      "Duration of a complete fetch-build-publish reload.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SnapshotFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamflow",
			Name:      "snapshot_features",
			Help:      "Features in the current snapshot.",
		}),
		SnapshotTimes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamflow",
			Name:      "snapshot_times",
			Help:      "Timesteps in the current snapshot.",
		}),
		LoaderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamflow",
			Name:      "loader_cache_total",
			Help:      "Dataset loader cache lookups by result.",
		}, []string{"result"}),
	}
}
