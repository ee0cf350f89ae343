package application

import (
	"context"

	"github.com/jobrunner/sphaera/internal/ports/input"
)

// HealthService provides health check functionality.
type HealthService struct {
	registry *DatasetRegistry
	frames   *FrameRegistry
	ready    func() bool
}

// NewHealthService creates a new health service. Readiness follows
// SetReady; until it is called the service reports ready.
func NewHealthService(registry *DatasetRegistry, frames *FrameRegistry) *HealthService {
	return &HealthService{
		registry: registry,
		frames:   frames,
		ready:    func() bool { return true },
	}
}

// SetReady installs the readiness probe, usually "initial load finished".
func (s *HealthService) SetReady(probe func() bool) {
	s.ready = probe
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(_ context.Context) bool {
	return true
}

// IsReady returns true once the globe frame is constructed and the probe
// passes.
func (s *HealthService) IsReady(_ context.Context) bool {
	if _, err := s.frames.Get(input.FrameSelector{Frame: s.registry.GlobeFrame()}); err != nil {
		return false
	}
	return s.ready()
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	components := map[string]string{
		"engine":  "ok",
		"storage": "ok",
	}
	if _, err := s.frames.Get(input.FrameSelector{Frame: s.registry.GlobeFrame()}); err != nil {
		components["engine"] = err.Error()
	}

	return input.HealthDetails{
		Healthy:        s.IsHealthy(ctx),
		Ready:          s.IsReady(ctx),
		GlobeFrame:     s.registry.GlobeFrame(),
		Frames:         len(s.frames.Factory().Frames()),
		DatasetsLoaded: s.registry.DatasetCount(),
		FeaturesLoaded: s.registry.FeatureCount(),
		Components:     components,
	}
}
