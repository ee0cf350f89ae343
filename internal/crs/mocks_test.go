package crs

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockAstro shifts longitudes by offset: GAL2EQ adds it, EQ2GAL subtracts it.
type mockAstro struct {
	offset float64
	calls  int
}

func (m *mockAstro) Transform(geo []float64, kind output.TransformKind) []float64 {
	m.calls++
	if kind == output.GAL2EQ {
		return []float64{geo[0] + m.offset, geo[1]}
	}
	return []float64{geo[0] - m.offset, geo[1]}
}

// mockPlate is a plate carrée projection in radians with a configurable bound.
type mockPlate struct {
	bound domain.GeoBound
}

func newMockPlate() *mockPlate {
	return &mockPlate{bound: domain.GeoBound{West: -180, South: -85, East: 180, North: 85}}
}

func (m *mockPlate) Name() string {
	return "MockPlate"
}

func (m *mockPlate) Project(geo []float64, dest []float64) []float64 {
	if cap(dest) < 3 {
		dest = make([]float64, 3)
	}
	dest = dest[:3]
	dest[0] = geo[0] * math.Pi / 180
	dest[1] = geo[1] * math.Pi / 180
	dest[2] = 0
	if len(geo) > 2 {
		dest[2] = geo[2]
	}
	return dest
}

func (m *mockPlate) UnProject(xyz []float64, dest []float64) ([]float64, bool) {
	if math.Abs(xyz[0]) > math.Pi || math.Abs(xyz[1]) > math.Pi/2 {
		return nil, false
	}
	if cap(dest) < 3 {
		dest = make([]float64, 3)
	}
	dest = dest[:3]
	dest[0] = xyz[0] * 180 / math.Pi
	dest[1] = xyz[1] * 180 / math.Pi
	dest[2] = xyz[2]
	return dest, true
}

func (m *mockPlate) GeoBound() domain.GeoBound {
	return m.bound
}

// mockProjections knows a single projection name.
type mockProjections struct {
	lastOptions output.ProjectionOptions
}

func (m *mockProjections) Create(name string, opts output.ProjectionOptions) (output.Projection, error) {
	m.lastOptions = opts
	if name != "MockPlate" {
		return nil, fmt.Errorf("projection %q: %w", name, domain.ErrUnsupportedProjection)
	}
	return newMockPlate(), nil
}

func (m *mockProjections) Names() []string {
	return []string{"MockPlate"}
}

// mockElevation returns a fixed height and records the queried position.
type mockElevation struct {
	height   float64
	lon, lat float64
}

func (m *mockElevation) Elevation(lon, lat float64) float64 {
	m.lon, m.lat = lon, lat
	return m.height
}

// newTestFactory returns a factory with a 30 degree mock rotation.
func newTestFactory() *Factory {
	return NewFactory(&mockAstro{offset: 30}, &mockProjections{}, testLogger())
}

// angleDiff returns the absolute difference of two longitudes modulo 360.
func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
