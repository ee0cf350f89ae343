package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/jobrunner/sphaera/internal/crs"
	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/input"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockStorage implements output.DatasetStorage over in-memory documents.
type mockStorage struct {
	mu      sync.Mutex
	objects map[string]string // key -> content
	meta    map[string]output.StorageObject
	listErr error
	opens   int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		objects: make(map[string]string),
		meta:    make(map[string]output.StorageObject),
	}
}

func (m *mockStorage) put(key, content, etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = content
	m.meta[key] = output.StorageObject{Key: key, Size: int64(len(content)), ETag: etag}
}

func (m *mockStorage) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.meta, key)
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	objects := make([]output.StorageObject, 0, len(m.meta))
	for _, obj := range m.meta {
		objects = append(objects, obj)
	}
	return objects, nil
}

func (m *mockStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	content, ok := m.objects[key]
	if !ok {
		return nil, &domain.StorageError{Operation: "open", Key: key, Err: domain.ErrNotFound}
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (m *mockStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

// mockDecoder reads a line-based format: the first line is the frame (or
// empty), every further line "id lon,lat lon,lat ..." is a feature; one
// vertex makes a point, more make a line string.
type mockDecoder struct{}

func (m *mockDecoder) Decode(r io.Reader, defaultFrame domain.FrameID) (*output.DecodedDataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	ds := &output.DecodedDataset{Frame: defaultFrame}
	if lines[0] == "broken" {
		return nil, fmt.Errorf("broken document: %w", domain.ErrMalformedInput)
	}
	if lines[0] != "" {
		ds.Frame = domain.FrameID(lines[0])
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		var pts orbPoints
		for _, f := range fields[1:] {
			var lon, lat float64
			if _, err := fmt.Sscanf(f, "%g,%g", &lon, &lat); err != nil {
				return nil, err
			}
			pts = append(pts, orb.Point{lon, lat})
		}
		ds.Features = append(ds.Features, domain.Feature{
			ID:         fields[0],
			Geometry:   pts.geometry(),
			Properties: map[string]interface{}{"name": fields[0]},
		})
	}
	return ds, nil
}

// mockAstro shifts longitudes by offset: GAL2EQ adds it, EQ2GAL subtracts it.
type mockAstro struct {
	offset float64
}

func (m *mockAstro) Transform(geo []float64, kind output.TransformKind) []float64 {
	if kind == output.GAL2EQ {
		return []float64{geo[0] + m.offset, geo[1]}
	}
	return []float64{geo[0] - m.offset, geo[1]}
}

// mockPlate is a plate carrée projection in radians.
type mockPlate struct{}

func (m *mockPlate) Name() string { return "MockPlate" }

func (m *mockPlate) GeoBound() domain.GeoBound {
	return domain.GeoBound{West: -180, South: -90, East: 180, North: 90}
}

func (m *mockPlate) Project(geo, dest []float64) []float64 {
	if cap(dest) < 3 {
		dest = make([]float64, 3)
	}
	dest = dest[:3]
	h := 0.0
	if len(geo) > 2 {
		h = geo[2]
	}
	dest[0], dest[1], dest[2] = geo[0]*math.Pi/180, geo[1]*math.Pi/180, h
	return dest
}

func (m *mockPlate) UnProject(xyz, _ []float64) ([]float64, bool) {
	if math.Abs(xyz[0]) > math.Pi || math.Abs(xyz[1]) > math.Pi/2 {
		return nil, false
	}
	return []float64{xyz[0] * 180 / math.Pi, xyz[1] * 180 / math.Pi, xyz[2]}, true
}

type mockProjections struct{}

func (m *mockProjections) Create(name string, _ output.ProjectionOptions) (output.Projection, error) {
	if name != "MockPlate" {
		return nil, fmt.Errorf("projection %q: %w", name, domain.ErrUnsupportedProjection)
	}
	return &mockPlate{}, nil
}

func (m *mockProjections) Names() []string { return []string{"MockPlate"} }

// mockMetrics records operation outcomes.
type mockMetrics struct {
	output.NoOpMetrics
	mu       sync.Mutex
	ops      map[string]int
	failures map[string]int
	datasets int
	features int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{ops: make(map[string]int), failures: make(map[string]int)}
}

func (m *mockMetrics) IncOperationCount(op, _ string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op]++
	if !success {
		m.failures[op]++
	}
}

func (m *mockMetrics) ObserveOperationDuration(_ string, _ time.Duration) {}

func (m *mockMetrics) SetDatasetsLoaded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets = n
}

func (m *mockMetrics) SetFeaturesLoaded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = n
}

func newTestFrames() *FrameRegistry {
	return NewFrameRegistry(crs.NewFactory(&mockAstro{offset: 30}, &mockProjections{}, testLogger()))
}

func newTestRegistry(storage output.DatasetStorage, globe domain.FrameID, metrics output.MetricsCollector) (*DatasetRegistry, *FrameRegistry) {
	frames := newTestFrames()
	cs, err := frames.Get(input.FrameSelector{Frame: globe})
	if err != nil {
		panic(err)
	}
	return NewDatasetRegistry(storage, &mockDecoder{}, cs, metrics, testLogger(), DatasetRegistryConfig{}), frames
}

var errStorageDown = errors.New("storage down")

type orbPoints []orb.Point

func (p orbPoints) geometry() orb.Geometry {
	if len(p) == 1 {
		return p[0]
	}
	return orb.LineString(p)
}
