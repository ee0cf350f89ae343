package application

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/jobrunner/sphaera/internal/domain"
)

// Galactic sources are shifted by +30 degrees on their way into the
// equatorial globe (see mockAstro).
const (
	skyDataset = "Galactic\n" +
		"star 10,15\n" +
		"track 0,0 20,10\n"
	earthDataset = "\n" +
		"berlin 13.4,52.5\n" +
		"rhine 6,47 8,50 7,52\n"
)

func TestDatasetRegistry_LoadDataset(t *testing.T) {
	storage := newMockStorage()
	storage.put("sky.geojson", skyDataset, "v1")
	metrics := newMockMetrics()
	registry, _ := newTestRegistry(storage, domain.FrameEquatorial, metrics)

	if err := registry.LoadDataset(context.Background(), "sky.geojson"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	ds, err := registry.GetDataset(context.Background(), "sky")
	if err != nil {
		t.Fatalf("GetDataset() error = %v", err)
	}
	if ds.Frame != domain.FrameGalactic {
		t.Errorf("Frame = %q, want Galactic", ds.Frame)
	}
	if ds.Name != "sky" {
		t.Errorf("Name = %q, want the ID", ds.Name)
	}
	if ds.FeatureCount() != 2 {
		t.Fatalf("FeatureCount() = %d, want 2", ds.FeatureCount())
	}

	star := ds.Features[0]
	if p, ok := star.Geometry.(orb.Point); !ok || p != (orb.Point{40, 15}) {
		t.Errorf("star geometry = %v, want POINT(40 15)", star.Geometry)
	}

	track := ds.Features[1]
	want := domain.GeoBound{West: 30, South: 0, East: 50, North: 10}
	if *track.Bound != want {
		t.Errorf("track bound = %v, want %v", track.Bound.String(), want.String())
	}
	if ls := track.Geometry.(orb.LineString); ls[1] != (orb.Point{50, 10}) {
		t.Errorf("track geometry = %v", ls)
	}

	if *ds.Bound != (domain.GeoBound{West: 30, South: 0, East: 50, North: 15}) {
		t.Errorf("dataset bound = %v", ds.Bound.String())
	}
	if metrics.datasets != 1 || metrics.features != 2 {
		t.Errorf("metrics = %d datasets, %d features", metrics.datasets, metrics.features)
	}
}

func TestDatasetRegistry_LoadErrors(t *testing.T) {
	storage := newMockStorage()
	storage.put("broken.geojson", "broken\n", "")
	storage.put("ecliptic.geojson", "Ecliptic\nx 1,2\n", "")
	storage.put("mars.geojson", "IAU2000:49901\ncrater 1,2\n", "")
	registry, _ := newTestRegistry(storage, domain.FrameWGS84, nil)
	ctx := context.Background()

	if err := registry.LoadDataset(ctx, "missing.geojson"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing object error = %v", err)
	}

	err := registry.LoadDataset(ctx, "broken.geojson")
	var dsErr *domain.DatasetError
	if !errors.As(err, &dsErr) || dsErr.DatasetID != "broken" || !errors.Is(err, domain.ErrMalformedInput) {
		t.Errorf("broken dataset error = %v", err)
	}

	if err := registry.LoadDataset(ctx, "ecliptic.geojson"); !errors.Is(err, domain.ErrUnsupportedFrame) {
		t.Errorf("unknown frame error = %v", err)
	}

	// Mars features cannot be folded into WGS84; the dataset loads empty.
	if err := registry.LoadDataset(ctx, "mars.geojson"); err != nil {
		t.Fatalf("LoadDataset(mars) error = %v", err)
	}
	ds, _ := registry.GetDataset(ctx, "mars")
	if ds.FeatureCount() != 0 || ds.Bound != nil {
		t.Errorf("mars dataset = %d features, bound %v", ds.FeatureCount(), ds.Bound)
	}
}

func TestDatasetRegistry_QueryBound(t *testing.T) {
	storage := newMockStorage()
	storage.put("earth.geojson", earthDataset, "")
	registry, _ := newTestRegistry(storage, domain.FrameWGS84, nil)
	ctx := context.Background()
	if err := registry.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	tests := []struct {
		name    string
		query   domain.BoundQuery
		want    []string
		wantErr error
	}{
		{
			name:  "point only",
			query: domain.BoundQuery{Bound: domain.NewGeoBound(10, 50, 15, 55)},
			want:  []string{"berlin"},
		},
		{
			name:  "line only",
			query: domain.BoundQuery{Bound: domain.NewGeoBound(0, 40, 7.5, 48)},
			want:  []string{"rhine"},
		},
		{
			name:  "nothing",
			query: domain.BoundQuery{Bound: domain.NewGeoBound(-50, -50, -40, -40)},
		},
		{
			name:  "limit",
			query: domain.BoundQuery{Bound: domain.NewGeoBound(0, 40, 20, 60), Limit: 1},
			want:  []string{"berlin"},
		},
		{
			name:  "geometry",
			query: domain.BoundQuery{Geometry: orb.LineString{{5, 46}, {9, 49}}},
			want:  []string{"rhine"},
		},
		{
			name:  "explicit globe frame",
			query: domain.BoundQuery{Bound: domain.NewGeoBound(13, 52, 14, 53), Frame: domain.FrameEPSG4326},
			want:  []string{"berlin"},
		},
		{
			name:    "unknown dataset",
			query:   domain.BoundQuery{Bound: domain.NewGeoBound(0, 0, 1, 1), DatasetID: "moon"},
			wantErr: domain.ErrDatasetNotFound,
		},
		{
			name:    "missing bound",
			query:   domain.BoundQuery{},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "inverted bound",
			query:   domain.BoundQuery{Bound: domain.NewGeoBound(10, 0, 0, 10)},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := registry.QueryBound(ctx, tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("QueryBound() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("QueryBound() error = %v", err)
			}

			var got []string
			for _, r := range resp.Results {
				for _, f := range r.Features {
					got = append(got, f.ID)
				}
			}
			if len(got) != len(tt.want) || resp.TotalFeatures != len(tt.want) {
				t.Fatalf("QueryBound() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("feature %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDatasetRegistry_QueryBoundConvertsFrame(t *testing.T) {
	storage := newMockStorage()
	storage.put("sky.geojson", skyDataset, "")
	registry, _ := newTestRegistry(storage, domain.FrameEquatorial, nil)
	ctx := context.Background()
	if err := registry.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	// A galactic query around the star lands at RA 40 in the globe.
	resp, err := registry.QueryBound(ctx, domain.BoundQuery{
		Bound: domain.NewGeoBound(9, 14, 11, 16),
		Frame: domain.FrameGalactic,
	})
	if err != nil {
		t.Fatalf("QueryBound() error = %v", err)
	}
	if resp.TotalFeatures != 1 || resp.Results[0].Features[0].ID != "star" {
		t.Errorf("QueryBound() = %+v", resp.Results)
	}
}

func TestDatasetRegistry_Sync(t *testing.T) {
	storage := newMockStorage()
	storage.put("a.geojson", earthDataset, "v1")
	storage.put("b.geojson", earthDataset, "v1")
	registry, _ := newTestRegistry(storage, domain.FrameWGS84, nil)
	ctx := context.Background()

	stats, err := registry.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if stats.Added != 2 || stats.Removed != 0 {
		t.Errorf("first sync = %+v, want 2 added", stats)
	}

	stats, _ = registry.Sync(ctx)
	if stats != (SyncStats{}) {
		t.Errorf("unchanged sync = %+v, want no changes", stats)
	}

	storage.put("b.geojson", "\nparis 2.35,48.85\n", "v2")
	storage.remove("a.geojson")
	storage.put("c.geojson", earthDataset, "v1")

	stats, err = registry.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if stats.Added != 1 || stats.Reloaded != 1 || stats.Removed != 1 {
		t.Errorf("third sync = %+v, want 1 added, 1 reloaded, 1 removed", stats)
	}
	if registry.IsLoaded("a") || !registry.IsLoaded("c") {
		t.Error("registry out of sync with storage")
	}
	b, _ := registry.GetDataset(ctx, "b")
	if b.FeatureCount() != 1 || b.Features[0].ID != "paris" {
		t.Errorf("b not reloaded: %+v", b.Features)
	}

	storage.listErr = errStorageDown
	if _, err := registry.Sync(ctx); !errors.Is(err, errStorageDown) {
		t.Errorf("Sync() error = %v, want storage error", err)
	}
}

func TestDatasetRegistry_ListAndUnload(t *testing.T) {
	storage := newMockStorage()
	storage.put("b.geojson", earthDataset, "")
	storage.put("a.geojson", earthDataset, "")
	registry, _ := newTestRegistry(storage, domain.FrameWGS84, nil)
	ctx := context.Background()
	_ = registry.LoadAll(ctx)

	list, err := registry.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("ListDatasets() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("ListDatasets() = %v", list)
	}
	if registry.FeatureCount() != 4 {
		t.Errorf("FeatureCount() = %d, want 4", registry.FeatureCount())
	}

	if err := registry.UnloadDataset(ctx, "a"); err != nil {
		t.Fatalf("UnloadDataset() error = %v", err)
	}
	if err := registry.UnloadDataset(ctx, "a"); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Errorf("second UnloadDataset() error = %v", err)
	}
	if _, err := registry.GetDataset(ctx, "a"); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Errorf("GetDataset() error = %v", err)
	}
}

func TestGeometryRebuild(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	vertices := vertexList(poly)
	if len(vertices) != 4 {
		t.Fatalf("vertexList() = %d vertices, want 4", len(vertices))
	}
	for _, v := range vertices {
		v[0] += 100
	}

	got := rebuild(poly, vertices).(orb.Polygon)
	if got[0][1] != (orb.Point{101, 0}) {
		t.Errorf("rebuilt vertex = %v, want [101 0]", got[0][1])
	}
	if poly[0][1] != (orb.Point{1, 0}) {
		t.Error("rebuild modified its input")
	}

	coll := orb.Collection{orb.Point{1, 2}, orb.LineString{{3, 4}}}
	rebuilt := rebuild(coll, [][]float64{{10, 20}, {30, 40}}).(orb.Collection)
	if rebuilt[0].(orb.Point) != (orb.Point{10, 20}) || rebuilt[1].(orb.LineString)[0] != (orb.Point{30, 40}) {
		t.Errorf("rebuilt collection = %v", rebuilt)
	}
}
