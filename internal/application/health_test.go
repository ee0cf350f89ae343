package application

import (
	"context"
	"testing"

	"github.com/jobrunner/sphaera/internal/domain"
)

func TestHealthService(t *testing.T) {
	storage := newMockStorage()
	storage.put("earth.geojson", earthDataset, "")
	registry, frames := newTestRegistry(storage, domain.FrameWGS84, nil)
	service := NewHealthService(registry, frames)
	ctx := context.Background()

	if !service.IsHealthy(ctx) {
		t.Error("IsHealthy should return true")
	}
	if !service.IsReady(ctx) {
		t.Error("IsReady should default to true")
	}

	loaded := false
	service.SetReady(func() bool { return loaded })
	if service.IsReady(ctx) {
		t.Error("IsReady should follow the probe")
	}

	_ = registry.LoadAll(ctx)
	loaded = true

	details := service.GetHealthDetails(ctx)
	if !details.Healthy || !details.Ready {
		t.Errorf("details = %+v, want healthy and ready", details)
	}
	if details.GlobeFrame != domain.FrameWGS84 {
		t.Errorf("GlobeFrame = %q", details.GlobeFrame)
	}
	if details.DatasetsLoaded != 1 || details.FeaturesLoaded != 2 {
		t.Errorf("loaded = %d datasets, %d features", details.DatasetsLoaded, details.FeaturesLoaded)
	}
	if details.Frames != 7 {
		t.Errorf("Frames = %d, want 7", details.Frames)
	}
	if details.Components["engine"] != "ok" {
		t.Errorf("engine component = %q", details.Components["engine"])
	}
}
