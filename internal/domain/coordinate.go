package domain

import (
	"fmt"
)

// Position is a geographic position in a named frame.
type Position struct {
	Lon    float64 // Longitude, right ascension or azimuth (degrees)
	Lat    float64 // Latitude, declination or altitude (degrees)
	Height float64 // Height above the datum (meters, optional)
	Frame  FrameID
}

// NewPosition creates a position without height.
func NewPosition(lon, lat float64, frame FrameID) Position {
	return Position{Lon: lon, Lat: lat, Frame: frame}
}

// Validate checks that the position lies within bound.
func (p Position) Validate(bound *GeoBound) error {
	if bound == nil {
		return nil
	}
	if p.Lon < bound.West || p.Lon > bound.East {
		return &ValidationError{
			Field:      "longitude",
			Value:      p.Lon,
			Constraint: fmt.Sprintf("[%g, %g]", bound.West, bound.East),
			Message:    fmt.Sprintf("longitude must be between %g and %g", bound.West, bound.East),
		}
	}
	if p.Lat < bound.South || p.Lat > bound.North {
		return &ValidationError{
			Field:      "latitude",
			Value:      p.Lat,
			Constraint: fmt.Sprintf("[%g, %g]", bound.South, bound.North),
			Message:    fmt.Sprintf("latitude must be between %g and %g", bound.South, bound.North),
		}
	}
	return nil
}

// Geo returns the position as a [lon, lat, height] vector.
func (p Position) Geo() []float64 {
	return []float64{p.Lon, p.Lat, p.Height}
}

// PositionFromGeo builds a position from a [lon, lat, (height)] vector.
func PositionFromGeo(geo []float64, frame FrameID) (Position, error) {
	if len(geo) < 2 {
		return Position{}, fmt.Errorf("geographic vector has %d components: %w", len(geo), ErrMalformedInput)
	}
	p := Position{Lon: geo[0], Lat: geo[1], Frame: frame}
	if len(geo) > 2 {
		p.Height = geo[2]
	}
	return p, nil
}

// String returns a string representation of the position.
func (p Position) String() string {
	if p.Height != 0 {
		return fmt.Sprintf("POINT Z(%f %f %f) FRAME=%s", p.Lon, p.Lat, p.Height, p.Frame)
	}
	return fmt.Sprintf("POINT(%f %f) FRAME=%s", p.Lon, p.Lat, p.Frame)
}
