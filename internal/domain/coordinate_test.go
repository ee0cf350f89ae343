package domain

import (
	"errors"
	"testing"
)

func TestPositionValidate(t *testing.T) {
	planet := NewGeoBound(-180, -90, 180, 90)
	sky := NewGeoBound(0, -90, 360, 90)

	tests := []struct {
		name    string
		pos     Position
		bound   *GeoBound
		wantErr bool
	}{
		{"valid planet position", NewPosition(7.4, 51.5, FrameWGS84), planet, false},
		{"planet edge", NewPosition(-180, 90, FrameWGS84), planet, false},
		{"longitude too large", NewPosition(181, 0, FrameWGS84), planet, true},
		{"latitude too small", NewPosition(0, -91, FrameWGS84), planet, true},
		{"sky longitude", NewPosition(350, 10, FrameEquatorial), sky, false},
		{"negative sky longitude", NewPosition(-1, 10, FrameEquatorial), sky, true},
		{"nil bound", NewPosition(1000, 1000, FrameSun), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pos.Validate(tt.bound)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPositionFromGeo(t *testing.T) {
	p, err := PositionFromGeo([]float64{10, 20, 30}, FrameMars2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lon != 10 || p.Lat != 20 || p.Height != 30 || p.Frame != FrameMars2000 {
		t.Errorf("PositionFromGeo() = %+v", p)
	}

	geo := p.Geo()
	if len(geo) != 3 || geo[2] != 30 {
		t.Errorf("Geo() = %v", geo)
	}

	p, err = PositionFromGeo([]float64{1, 2}, FrameWGS84)
	if err != nil || p.Height != 0 {
		t.Errorf("two-component vector: %+v, %v", p, err)
	}

	if _, err := PositionFromGeo([]float64{1}, FrameWGS84); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}

func TestPositionString(t *testing.T) {
	got := NewPosition(1.5, 2.5, FrameWGS84).String()
	want := "POINT(1.500000 2.500000) FRAME=CRS:84"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	p := Position{Lon: 1, Lat: 2, Height: 3, Frame: FrameSun}
	if got := p.String(); got != "POINT Z(1.000000 2.000000 3.000000) FRAME=IAU:Sun" {
		t.Errorf("String() = %q", got)
	}
}
