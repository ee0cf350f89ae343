// Package application contains the application services.
package application

import (
	"sync"

	"github.com/jobrunner/sphaera/internal/crs"
	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/input"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

type frameKey struct {
	frame      domain.FrameID
	projection string
	lambda0    float64
	pole       string
}

// FrameRegistry caches constructed frames. CRS instances hold no mutable
// state after construction and are shared between callers.
type FrameRegistry struct {
	factory *crs.Factory
	mu      sync.RWMutex
	frames  map[frameKey]crs.CRS
}

// NewFrameRegistry creates a registry backed by factory.
func NewFrameRegistry(factory *crs.Factory) *FrameRegistry {
	return &FrameRegistry{
		factory: factory,
		frames:  make(map[frameKey]crs.CRS),
	}
}

// Factory returns the underlying factory.
func (r *FrameRegistry) Factory() *crs.Factory {
	return r.factory
}

// Get returns the frame named by sel, building it on first use.
func (r *FrameRegistry) Get(sel input.FrameSelector) (crs.CRS, error) {
	key := keyOf(sel)

	r.mu.RLock()
	cs, ok := r.frames[key]
	r.mu.RUnlock()
	if ok {
		return cs, nil
	}

	cs, err := r.factory.Create(crs.Options{
		GeoideName:     key.frame,
		ProjectionName: key.projection,
		ProjectionOptions: output.ProjectionOptions{
			Lambda0: key.lambda0,
			Pole:    key.pole,
		},
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.frames[key]; ok {
		return existing, nil
	}
	r.frames[key] = cs
	return cs, nil
}

// Len returns the number of cached frames.
func (r *FrameRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

func keyOf(sel input.FrameSelector) frameKey {
	key := frameKey{frame: crs.Canonical(sel.Frame), projection: sel.Projection}
	if sel.Projection != "" {
		key.lambda0 = sel.Lambda0
		key.pole = sel.Pole
	}
	return key
}
