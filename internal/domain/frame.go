// Package domain contains the core value types of the coordinate engine.
package domain

// FrameID identifies a reference frame. The string values are wire-stable.
type FrameID string

// Known reference frames.
const (
	FrameEquatorial      FrameID = "Equatorial"
	FrameGalactic        FrameID = "Galactic"
	FrameWGS84           FrameID = "CRS:84"
	FrameEPSG4326        FrameID = "EPSG:4326" // legacy token for WGS84
	FrameMars2000        FrameID = "IAU2000:49901"
	FrameMars2000Old     FrameID = "IAU2000:49900"
	FrameMoon2000        FrameID = "IAU2000:30101"
	FrameMoon2000Old     FrameID = "IAU2000:30100"
	FrameHorizontalLocal FrameID = "HorizontalLocal"
	FrameSun             FrameID = "IAU:Sun"
)

// KnownFrames lists every frame identifier accepted by the engine, in the
// order they are presented to clients.
var KnownFrames = []FrameID{
	FrameWGS84,
	FrameEPSG4326,
	FrameMars2000,
	FrameMars2000Old,
	FrameMoon2000,
	FrameMoon2000Old,
	FrameSun,
	FrameHorizontalLocal,
	FrameEquatorial,
	FrameGalactic,
}

// IsKnownFrame returns true if id is one of the known frame identifiers.
func IsKnownFrame(id FrameID) bool {
	for _, f := range KnownFrames {
		if f == id {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (f FrameID) String() string {
	return string(f)
}

// Domain is the kind of body a frame describes.
type Domain int

// Frame domains. The zero value means the domain was not set.
const (
	DomainUnknown Domain = iota
	DomainPlanet
	DomainSky
	DomainGround
)

// String returns the string representation of the domain.
func (d Domain) String() string {
	switch d {
	case DomainPlanet:
		return "Planet"
	case DomainSky:
		return "Sky"
	case DomainGround:
		return "Ground"
	default:
		return "unknown"
	}
}

// ParseDomain parses the string form of a domain.
func ParseDomain(s string) Domain {
	switch s {
	case "Planet":
		return DomainPlanet
	case "Sky":
		return DomainSky
	case "Ground":
		return DomainGround
	default:
		return DomainUnknown
	}
}
