package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		name     string
		input    string
		opts     output.ProjectionOptions
		wantName string
		wantErr  bool
	}{
		{name: "plate", input: "Plate", wantName: NamePlate},
		{name: "plate carree", input: "Plate Carrée", wantName: NamePlate},
		{name: "mercator", input: "Mercator", opts: output.ProjectionOptions{Lambda0: 10}, wantName: NameMercator},
		{name: "mollweide", input: "Mollweide", wantName: NameMollweide},
		{name: "azimuth", input: "Azimuth", opts: output.ProjectionOptions{Pole: "south"}, wantName: NameAzimuth},
		{name: "aitoff", input: "Aitoff", wantName: NameAitoff},
		{name: "unknown", input: "August", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.Create(tt.input, tt.opts)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnsupportedProjection) {
					t.Fatalf("Create(%q) error = %v, want ErrUnsupportedProjection", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create(%q) error = %v", tt.input, err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
			b := p.GeoBound()
			if !b.IsValid() {
				t.Errorf("GeoBound() = %v is not valid", b.String())
			}
		})
	}
}

func TestFactory_Names(t *testing.T) {
	names := NewFactory().Names()
	if len(names) != 5 {
		t.Fatalf("Names() returned %d entries, want 5", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Names() not sorted: %v", names)
		}
	}
}

func TestProjections_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		proj   output.Projection
		points [][]float64
		tol    float64
	}{
		{
			name:   "plate",
			proj:   NewPlate(),
			points: [][]float64{{0, 0, 0}, {45, 30, 100}, {-179, -89, 0}},
			tol:    1e-9,
		},
		{
			name:   "mercator",
			proj:   NewMercator(0),
			points: [][]float64{{0, 0, 0}, {45, 30, 10}, {-120, -60, 0}, {10, 85.05, 0}},
			tol:    1e-9,
		},
		{
			name:   "mercator shifted meridian",
			proj:   NewMercator(20),
			points: [][]float64{{45, 30, 0}, {-100, 10, 0}},
			tol:    1e-9,
		},
		{
			name:   "mollweide",
			proj:   NewMollweide(),
			points: [][]float64{{0, 0, 0}, {45, 30, 5}, {-150, -60, 0}, {90, 90, 0}},
			tol:    1e-6,
		},
		{
			name:   "azimuth north",
			proj:   NewAzimuth("north"),
			points: [][]float64{{45, 30, 0}, {-120, 60, 2}, {170, 10, 0}},
			tol:    1e-9,
		},
		{
			name:   "azimuth south",
			proj:   NewAzimuth("south"),
			points: [][]float64{{45, -30, 0}, {-120, -60, 2}},
			tol:    1e-9,
		},
		{
			name:   "aitoff",
			proj:   NewAitoff(),
			points: [][]float64{{0, 0, 0}, {30, 20, 1}, {-120, -45, 0}, {60, -10, 0}},
			tol:    0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, geo := range tt.points {
				xyz := tt.proj.Project(geo, nil)
				got, ok := tt.proj.UnProject(xyz, nil)
				if !ok {
					t.Fatalf("UnProject(Project(%v)) failed", geo)
				}
				// Longitude is undefined at the pole.
				if math.Abs(geo[1]) < 90 && math.Abs(got[0]-geo[0]) > tt.tol {
					t.Errorf("lon round trip %v -> %v", geo, got)
				}
				if math.Abs(got[1]-geo[1]) > tt.tol {
					t.Errorf("lat round trip %v -> %v", geo, got)
				}
				if got[2] != geo[2] {
					t.Errorf("height round trip %v -> %v", geo, got)
				}
			}
		})
	}
}

func TestProjections_InputNotModified(t *testing.T) {
	projections := []output.Projection{NewPlate(), NewMercator(0), NewMollweide(), NewAzimuth(""), NewAitoff()}
	for _, p := range projections {
		t.Run(p.Name(), func(t *testing.T) {
			geo := []float64{120, 89, 3}
			p.Project(geo, nil)
			if geo[0] != 120 || geo[1] != 89 || geo[2] != 3 {
				t.Errorf("Project modified input: %v", geo)
			}
		})
	}
}

func TestProjections_DestReuse(t *testing.T) {
	p := NewPlate()
	dest := make([]float64, 3)
	got := p.Project([]float64{90, 45, 0}, dest)
	if &got[0] != &dest[0] {
		t.Error("Project did not reuse dest")
	}
	if math.Abs(got[0]-math.Pi/2) > 1e-12 || math.Abs(got[1]-math.Pi/4) > 1e-12 {
		t.Errorf("Project = %v", got)
	}
}

func TestMercator_Clamp(t *testing.T) {
	m := NewMercator(0)
	polar := m.Project([]float64{0, 89.9, 0}, nil)
	limit := m.Project([]float64{0, mercatorMaxLat, 0}, nil)
	if polar[1] != limit[1] {
		t.Errorf("Project did not clamp latitude: %v vs %v", polar[1], limit[1])
	}
	if _, ok := m.UnProject([]float64{0, 10, 0}, nil); ok {
		t.Error("UnProject beyond clamped latitude succeeded")
	}
}

func TestMercator_Lambda0(t *testing.T) {
	m := NewMercator(30)
	got := m.Project([]float64{30, 0, 0}, nil)
	if math.Abs(got[0]) > 1e-12 {
		t.Errorf("central meridian projects to x = %v, want 0", got[0])
	}
}

func TestAzimuth(t *testing.T) {
	t.Run("default pole", func(t *testing.T) {
		a := NewAzimuth("equator")
		if a.Pole() != PoleNorth {
			t.Errorf("Pole() = %q, want north", a.Pole())
		}
		b := a.GeoBound()
		if b.South != 0 || b.North != 90 {
			t.Errorf("GeoBound() = %v", b.String())
		}
	})

	t.Run("south bound", func(t *testing.T) {
		b := NewAzimuth("south").GeoBound()
		if b.South != -90 || b.North != 0 {
			t.Errorf("GeoBound() = %v", b.String())
		}
	})

	t.Run("pole at origin", func(t *testing.T) {
		got := NewAzimuth("north").Project([]float64{77, 90, 0}, nil)
		if math.Hypot(got[0], got[1]) > 1e-12 {
			t.Errorf("pole projects to %v", got)
		}
	})

	t.Run("beyond hemisphere", func(t *testing.T) {
		if _, ok := NewAzimuth("north").UnProject([]float64{2, 0, 0}, nil); ok {
			t.Error("UnProject beyond 90 degrees succeeded")
		}
	})
}

func TestAitoff_OutsideEllipse(t *testing.T) {
	a := NewAitoff()
	if _, ok := a.UnProject([]float64{3.5, 0, 0}, nil); ok {
		t.Error("UnProject outside ellipse succeeded")
	}
	if _, ok := a.UnProject([]float64{0, 1.7, 0}, nil); ok {
		t.Error("UnProject outside ellipse succeeded")
	}
}

func TestMollweide_OutsideEllipse(t *testing.T) {
	m := NewMollweide()
	if _, ok := m.UnProject([]float64{0, 1.5, 0}, nil); ok {
		t.Error("UnProject above the ellipse succeeded")
	}
	if _, ok := m.UnProject([]float64{3, 0, 0}, nil); ok {
		t.Error("UnProject beside the ellipse succeeded")
	}
}

func TestProjections_ShortInput(t *testing.T) {
	for _, p := range []output.Projection{NewPlate(), NewMercator(0), NewMollweide(), NewAzimuth(""), NewAitoff()} {
		got := p.Project([]float64{1}, nil)
		if len(got) != 3 || got[0] != 0 || got[1] != 0 {
			t.Errorf("%s: Project(short) = %v", p.Name(), got)
		}
		if _, ok := p.UnProject([]float64{0, 0}, nil); ok {
			t.Errorf("%s: UnProject(short) succeeded", p.Name())
		}
	}
}
