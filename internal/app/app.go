// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/jobrunner/sphaera/internal/adapters/astro"
	"github.com/jobrunner/sphaera/internal/adapters/geojson"
	httpAdapter "github.com/jobrunner/sphaera/internal/adapters/http"
	"github.com/jobrunner/sphaera/internal/adapters/metrics"
	"github.com/jobrunner/sphaera/internal/adapters/projection"
	"github.com/jobrunner/sphaera/internal/adapters/storage"
	tlsAdapter "github.com/jobrunner/sphaera/internal/adapters/tls"
	"github.com/jobrunner/sphaera/internal/adapters/watcher"
	"github.com/jobrunner/sphaera/internal/application"
	"github.com/jobrunner/sphaera/internal/config"
	"github.com/jobrunner/sphaera/internal/crs"
	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/input"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Factory       *crs.Factory
	Frames        *application.FrameRegistry
	Storage       output.DatasetStorage
	Registry      *application.DatasetRegistry
	Coordinates   *application.CoordinateService
	HealthService *application.HealthService
	SyncService   *application.SyncService
	HTTPServer    *httpAdapter.Server
	TLSServer     *tlsAdapter.Server
	Watcher       *watcher.Watcher
	Metrics       *metrics.Collector
	MetricsServer *metrics.Server

	loaded atomic.Bool
}

// NewEngine builds the CRS factory with the J2000 sky rotation and the
// projection adapters.
func NewEngine(logger *slog.Logger) *crs.Factory {
	return crs.NewFactory(astro.NewJ2000(), projection.NewFactory(), logger)
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	var middleware []mux.MiddlewareFunc
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("sphaera")
		app.MetricsServer = metrics.NewServer(app.Metrics, cfg.Metrics.Port, cfg.Metrics.Path, logger)
		metricsCollector = app.Metrics
		middleware = append(middleware, app.Metrics.Middleware)
	}

	app.Factory = NewEngine(logger)
	app.Frames = application.NewFrameRegistry(app.Factory)

	defaults := input.FrameSelector{
		Frame:      domain.FrameID(cfg.Engine.GlobeFrame),
		Projection: cfg.Engine.Projection,
		Lambda0:    cfg.Engine.Lambda0,
		Pole:       cfg.Engine.Pole,
	}
	globe, err := app.Frames.Get(input.FrameSelector{Frame: defaults.Frame})
	if err != nil {
		return nil, fmt.Errorf("building globe frame: %w", err)
	}
	if defaults.Projection != "" {
		if _, err := app.Frames.Get(defaults); err != nil {
			return nil, fmt.Errorf("building default projection: %w", err)
		}
	}

	store, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	app.Storage = store

	app.Registry = application.NewDatasetRegistry(
		app.Storage,
		geojson.NewDecoder(),
		globe,
		metricsCollector,
		logger,
		application.DatasetRegistryConfig{
			DefaultFrame: domain.FrameID(cfg.Engine.DatasetFrame),
			QueryLimit:   cfg.Engine.QueryLimit,
		},
	)

	app.Coordinates = application.NewCoordinateService(app.Frames, metricsCollector, logger)
	app.HealthService = application.NewHealthService(app.Registry, app.Frames)
	app.HealthService.SetReady(app.loaded.Load)
	app.SyncService = application.NewSyncService(app.Registry, cfg.Sync.Interval, logger)

	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		defaults,
		httpAdapter.Services{
			Coordinates: app.Coordinates,
			Datasets:    app.Registry,
			Health:      app.HealthService,
			Sync:        app.SyncService,
		},
		logger,
		middleware...,
	)

	if cfg.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(
			tlsAdapter.Config{
				Enabled:  cfg.TLS.Enabled,
				Domains:  cfg.TLS.Domains,
				Email:    cfg.TLS.Email,
				CacheDir: cfg.TLS.CacheDir,
				Staging:  cfg.TLS.Staging,
				DNS: tlsAdapter.DNSConfig{
					SubscriptionID:    cfg.TLS.DNS.SubscriptionID,
					ResourceGroupName: cfg.TLS.DNS.ResourceGroupName,
					ClientID:          cfg.TLS.DNS.ClientID,
				},
			},
			app.HTTPServer.Router(),
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("initializing TLS: %w", err)
		}
		app.TLSServer = tlsServer
	}

	if local, ok := store.(*storage.LocalStorage); ok && cfg.Watcher.Enabled {
		w, err := watcher.New(
			watcher.Config{
				Paths:    []string{cfg.Storage.LocalPath},
				Debounce: cfg.Watcher.Debounce,
			},
			app.fileEventHandler(local),
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	return app, nil
}

// Start loads the datasets, starts the background components and serves the
// API. It blocks until the server stops.
func (a *App) Start(ctx context.Context) error {
	if err := a.Registry.LoadAll(ctx); err != nil {
		a.Logger.Warn("failed to load datasets", "error", err)
	}
	a.loaded.Store(true)

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	a.SyncService.Start(ctx)

	if a.MetricsServer != nil {
		go func() {
			if err := a.MetricsServer.Start(); err != nil {
				a.Logger.Error("metrics server error", "error", err)
			}
		}()
	}

	var err error
	if a.TLSServer != nil {
		if err := a.TLSServer.ManageCertificates(ctx); err != nil {
			return err
		}
		err = a.TLSServer.ListenAndServe(a.Config.Server.Address())
	} else {
		err = a.HTTPServer.Start()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")
	a.loaded.Store(false)

	a.SyncService.Stop()

	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}

	if a.MetricsServer != nil {
		if err := a.MetricsServer.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown error", "error", err)
		}
	}

	var err error
	if a.TLSServer != nil {
		err = a.TLSServer.Shutdown(ctx)
	} else {
		err = a.HTTPServer.Shutdown(ctx)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

// fileEventHandler reloads or unloads the dataset behind a changed file of
// local storage.
func (a *App) fileEventHandler(local *storage.LocalStorage) watcher.Handler {
	return func(ctx context.Context, event watcher.Event) error {
		key, err := local.KeyOf(event.Path)
		if err != nil {
			return err
		}

		switch event.Operation {
		case watcher.OpCreate, watcher.OpModify:
			return a.Registry.LoadDataset(ctx, key)

		case watcher.OpDelete:
			id := output.DatasetID(key)
			if err := a.Registry.UnloadDataset(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		return nil
	}
}

// initStorage initializes the dataset storage adapter.
func initStorage(ctx context.Context, cfg config.StorageConfig) (output.DatasetStorage, error) {
	switch output.StorageType(strings.ToLower(cfg.Type)) {
	case output.StorageTypeLocal:
		return storage.NewLocalStorage(cfg.LocalPath), nil

	case output.StorageTypeS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	case output.StorageTypeAzure:
		return storage.NewAzureStorage(storage.AzureConfig{
			Container:        cfg.Azure.Container,
			AccountName:      cfg.Azure.AccountName,
			AccountKey:       cfg.Azure.AccountKey,
			ConnectionString: cfg.Azure.ConnectionString,
			Prefix:           cfg.Azure.Prefix,
		})

	case output.StorageTypeHTTP:
		return storage.NewHTTPStorage(storage.HTTPConfig{
			BaseURL:   cfg.HTTP.BaseURL,
			IndexFile: cfg.HTTP.IndexFile,
			Timeout:   cfg.HTTP.Timeout,
			Username:  cfg.HTTP.Username,
			Password:  cfg.HTTP.Password,
		}), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
