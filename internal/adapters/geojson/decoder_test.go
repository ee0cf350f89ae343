package geojson

import (
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/jobrunner/sphaera/internal/domain"
)

const marsCraters = `{
  "type": "FeatureCollection",
  "name": "craters",
  "frame": "IAU2000:49901",
  "features": [
    {"type": "Feature", "id": "gale", "geometry": {"type": "Point", "coordinates": [137.4, -5.4]}, "properties": {"diameter": 154}},
    {"type": "Feature", "id": 7, "geometry": {"type": "LineString", "coordinates": [[0, 0], [10, 5]]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [4, 0], [4, 4], [0, 4], [0, 0]]]}, "properties": null},
    {"type": "Feature", "geometry": null, "properties": {}}
  ]
}`

func TestDecoder_Decode(t *testing.T) {
	ds, err := NewDecoder().Decode(strings.NewReader(marsCraters), domain.FrameWGS84)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if ds.Name != "craters" {
		t.Errorf("Name = %q, want craters", ds.Name)
	}
	if ds.Frame != domain.FrameMars2000 {
		t.Errorf("Frame = %q, want %q", ds.Frame, domain.FrameMars2000)
	}
	if len(ds.Features) != 3 {
		t.Fatalf("got %d features, want 3", len(ds.Features))
	}

	wantIDs := []string{"gale", "7", "2"}
	for i, want := range wantIDs {
		if ds.Features[i].ID != want {
			t.Errorf("feature %d ID = %q, want %q", i, ds.Features[i].ID, want)
		}
	}

	if _, ok := ds.Features[0].Geometry.(orb.Point); !ok {
		t.Errorf("feature 0 geometry = %T, want orb.Point", ds.Features[0].Geometry)
	}
	if _, ok := ds.Features[2].Geometry.(orb.Polygon); !ok {
		t.Errorf("feature 2 geometry = %T, want orb.Polygon", ds.Features[2].Geometry)
	}
	if v, ok := ds.Features[0].GetProperty("diameter"); !ok || v.(float64) != 154 {
		t.Errorf("diameter = %v", v)
	}
}

func TestDecoder_DefaultFrame(t *testing.T) {
	input := `{"type": "FeatureCollection", "features": []}`
	ds, err := NewDecoder().Decode(strings.NewReader(input), domain.FrameWGS84)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ds.Frame != domain.FrameWGS84 {
		t.Errorf("Frame = %q, want default", ds.Frame)
	}
	if len(ds.Features) != 0 {
		t.Errorf("got %d features, want 0", len(ds.Features))
	}
}

func TestDecoder_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "frame: Galactic"},
		{name: "truncated", input: `{"type": "FeatureCollection", "features": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder().Decode(strings.NewReader(tt.input), domain.FrameWGS84)
			if !errors.Is(err, domain.ErrMalformedInput) {
				t.Errorf("Decode() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}
