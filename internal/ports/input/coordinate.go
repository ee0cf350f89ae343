// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/sphaera/internal/domain"
)

// FrameSelector names a frame and an optional projection of it.
type FrameSelector struct {
	Frame      domain.FrameID
	Projection string  // Empty for the unprojected frame
	Lambda0    float64 // Mercator central meridian (degrees)
	Pole       string  // Azimuth pole: north or south
}

// FrameInfo describes a constructed frame.
type FrameInfo struct {
	ID             domain.FrameID
	Name           string
	Description    string
	Type           domain.Domain
	Radius         float64
	RealRadius     float64
	HeightScale    float64
	Bound          domain.GeoBound
	LongitudeLabel string
	LatitudeLabel  string
	Projection     string // Projection name, empty when unprojected
	WKT            string
}

// Formatted holds the display strings of a position.
type Formatted struct {
	Labels      [2]string // Longitude and latitude labels
	Coordinates [2]string // Formatted per frame conventions
	Sexagesimal [2]string // HMS for the longitude, DMS for the latitude
}

// CoordinateService defines the primary port for coordinate operations.
type CoordinateService interface {
	// Frames describes every frame that can be constructed.
	Frames() []FrameInfo

	// Frame describes one frame, optionally projected.
	Frame(sel FrameSelector) (*FrameInfo, error)

	// Convert re-expresses pos in the frame to.
	Convert(pos domain.Position, to domain.FrameID) (domain.Position, error)

	// ToCartesian maps [lon, lat, height] to world 3D.
	ToCartesian(sel FrameSelector, geo []float64) ([]float64, error)

	// FromCartesian maps world 3D back to [lon, lat, height].
	FromCartesian(sel FrameSelector, xyz []float64) ([]float64, error)

	// LocalTransform returns the local frame matrix at geo; lhv selects the
	// height-scaled variant.
	LocalTransform(sel FrameSelector, geo []float64, lhv bool) (domain.Mat4, error)

	// Format renders geo for display.
	Format(sel FrameSelector, geo []float64) (*Formatted, error)

	// ParseSexagesimal reads an HMS/DMS pair back into decimal degrees.
	ParseSexagesimal(sel FrameSelector, values [2]string) ([]float64, error)
}

// DatasetRegistry defines the primary port for dataset management.
type DatasetRegistry interface {
	// ListDatasets returns all loaded datasets.
	ListDatasets(ctx context.Context) ([]domain.Dataset, error)

	// GetDataset returns a specific dataset by ID.
	GetDataset(ctx context.Context, id string) (*domain.Dataset, error)

	// QueryBound returns the features intersecting the query.
	QueryBound(ctx context.Context, q domain.BoundQuery) (*domain.BoundQueryResponse, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy        bool              // Overall health status
	Ready          bool              // Ready to accept requests
	GlobeFrame     domain.FrameID    // Frame datasets are folded into
	Frames         int               // Number of constructible frames
	DatasetsLoaded int               // Number of loaded datasets
	FeaturesLoaded int               // Number of loaded features
	Components     map[string]string // Component statuses
}
