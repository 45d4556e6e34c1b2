package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/streamflow-animator/internal/adapter/maplayer"
	"github.com/couchcryptid/streamflow-animator/internal/domain"
	"github.com/couchcryptid/streamflow-animator/internal/engine"
)

// Engine is the animation engine surface the API drives.
type Engine interface {
	sharedobs.ReadinessChecker
	State() engine.Status
	Play() error
	Pause()
	Seek(index int) error
	SetSpeed(multiplier float64) error
	SetResampleInterval(ctx context.Context, hours int) error
	Reload(ctx context.Context) error
	OnFeatureHover(id string) (domain.Reading, error)
	OnFeatureClick(id string) (domain.Series, error)
	ToggleVariable(name string) (bool, error)
	InspectorSeries(resample int) (domain.Series, bool)
	Notice() (engine.Notice, bool)
}

// Server exposes the animation API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	engine     Engine
	frames     *maplayer.Store
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /api routes.
func NewServer(addr string, eng Engine, frames *maplayer.Store, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Reload requests wait for the dataset service.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		engine: eng,
		frames: frames,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(eng))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/play", s.handlePlay)
	mux.HandleFunc("POST /api/pause", s.handlePause)
	mux.HandleFunc("POST /api/seek", s.handleSeek)
	mux.HandleFunc("POST /api/speed", s.handleSpeed)
	mux.HandleFunc("POST /api/resample", s.handleResample)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/frame", s.handleFrame)
	mux.HandleFunc("GET /api/features/{id}", s.handleHover)
	mux.HandleFunc("POST /api/features/{id}/select", s.handleSelect)
	mux.HandleFunc("GET /api/inspector", s.handleInspector)
	mux.HandleFunc("POST /api/inspector/variables/{name}/toggle", s.handleToggle)
	mux.HandleFunc("GET /api/notice", s.handleNotice)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
