// Package http exposes the coordinate engine and the dataset registry over a
// JSON REST API.
package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobrunner/sphaera/internal/application"
	"github.com/jobrunner/sphaera/internal/config"
	"github.com/jobrunner/sphaera/internal/ports/input"
)

// Syncer triggers an on-demand storage synchronization.
type Syncer interface {
	TriggerSync(ctx context.Context) (application.SyncResult, error)
}

// Services bundles the driving ports served by the API. Sync is optional.
type Services struct {
	Coordinates input.CoordinateService
	Datasets    input.DatasetRegistry
	Health      input.HealthChecker
	Sync        Syncer
}

// Server wraps the HTTP server with application handlers.
type Server struct {
	server   *http.Server
	router   *mux.Router
	coords   input.CoordinateService
	datasets input.DatasetRegistry
	health   input.HealthChecker
	sync     Syncer
	defaults input.FrameSelector
	cors     *originPolicy
	logger   *slog.Logger
	config   config.ServerConfig
}

// NewServer creates a new HTTP server. defaults fills in the frame selector
// of requests that omit one. middleware runs outside the built-in logging
// and recovery middleware.
func NewServer(
	cfg config.ServerConfig,
	defaults input.FrameSelector,
	svc Services,
	logger *slog.Logger,
	middleware ...mux.MiddlewareFunc,
) *Server {
	s := &Server{
		coords:   svc.Coordinates,
		datasets: svc.Datasets,
		health:   svc.Health,
		sync:     svc.Sync,
		defaults: defaults,
		cors:     newOriginPolicy(cfg.CORS.AllowedOrigins),
		logger:   logger,
		config:   cfg,
	}

	s.router = s.setupRoutes(middleware)

	s.server = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(middleware []mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()

	for _, m := range middleware {
		r.Use(m)
	}
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	if s.config.CORS.Enabled() {
		r.Use(s.corsMiddleware)
		// preflight requests need a matching route for the middleware to run
		r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	// Health endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Frames and coordinate operations
	api.HandleFunc("/frames", s.handleListFrames).Methods(http.MethodGet)
	api.HandleFunc("/frames/{frame}", s.handleGetFrame).Methods(http.MethodGet)
	api.HandleFunc("/convert", s.handleConvert).Methods(http.MethodGet)
	api.HandleFunc("/cartesian", s.handleCartesian).Methods(http.MethodGet)
	api.HandleFunc("/geographic", s.handleGeographic).Methods(http.MethodGet)
	api.HandleFunc("/transform", s.handleTransform).Methods(http.MethodGet)
	api.HandleFunc("/format", s.handleFormat).Methods(http.MethodGet)
	api.HandleFunc("/parse", s.handleParse).Methods(http.MethodGet)

	// Datasets
	api.HandleFunc("/datasets", s.handleListDatasets).Methods(http.MethodGet)
	api.HandleFunc("/datasets/query", s.handleQueryDatasets).Methods(http.MethodPost)
	api.HandleFunc("/datasets/{id}", s.handleGetDataset).Methods(http.MethodGet)

	if s.sync != nil {
		api.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)
	}

	r.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)
	r.HandleFunc("/docs", s.handleSwaggerUI).Methods(http.MethodGet)

	return r
}

// Router returns the mux router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.config.Address())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		level := slog.LevelInfo
		if wrapped.statusCode >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				s.writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
