package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobrunner/sphaera/internal/adapters/astro"
	"github.com/jobrunner/sphaera/internal/adapters/geojson"
	"github.com/jobrunner/sphaera/internal/adapters/projection"
	"github.com/jobrunner/sphaera/internal/adapters/storage"
	"github.com/jobrunner/sphaera/internal/application"
	"github.com/jobrunner/sphaera/internal/config"
	"github.com/jobrunner/sphaera/internal/crs"
	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/input"
)

const earthDataset = `{
  "type": "FeatureCollection",
  "name": "Earth places",
  "features": [
    {"type": "Feature", "id": "berlin", "properties": {"kind": "city"},
     "geometry": {"type": "Point", "coordinates": [13.4, 52.5]}},
    {"type": "Feature", "id": "rhine", "properties": {"kind": "river"},
     "geometry": {"type": "LineString", "coordinates": [[6, 47], [8, 50], [7, 52]]}}
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testStack struct {
	server   *Server
	registry *application.DatasetRegistry
	dir      string
}

// newTestStack wires the real engine and services over a temporary dataset
// directory holding earth.geojson.
func newTestStack(t *testing.T, cors ...string) *testStack {
	t.Helper()
	logger := testLogger()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "earth.geojson"), []byte(earthDataset), 0o644); err != nil {
		t.Fatal(err)
	}

	factory := crs.NewFactory(astro.NewJ2000(), projection.NewFactory(), logger)
	frames := application.NewFrameRegistry(factory)
	globe, err := frames.Get(input.FrameSelector{Frame: domain.FrameWGS84})
	if err != nil {
		t.Fatalf("building globe frame: %v", err)
	}

	registry := application.NewDatasetRegistry(
		storage.NewLocalStorage(dir),
		geojson.NewDecoder(),
		globe,
		nil,
		logger,
		application.DatasetRegistryConfig{},
	)
	if err := registry.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	srv := NewServer(
		config.ServerConfig{
			Host:         "localhost",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			CORS:         config.CORSConfig{AllowedOrigins: cors},
		},
		input.FrameSelector{Frame: domain.FrameWGS84},
		Services{
			Coordinates: application.NewCoordinateService(frames, nil, logger),
			Datasets:    registry,
			Health:      application.NewHealthService(registry, frames),
			Sync:        application.NewSyncService(registry, 0, logger),
		},
		logger,
	)

	return &testStack{server: srv, registry: registry, dir: dir}
}
