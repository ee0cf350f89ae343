package crs

import (
	"log/slog"

	"github.com/jobrunner/sphaera/internal/domain"
)

const horizontalDescription = "System in which a local object's position is described in the observer's local " +
	"horizon. It is expressed in terms of altitude (or elevation) angle and azimuth. The elevation is measured " +
	"from -90° (nadir) to 90° (zenith) but azimuth is measured in degrees eastward along the horizon from the North."

// HorizontalLocal is the topocentric azimuth/altitude frame of an observer on
// the ground.
type HorizontalLocal struct {
	*base
}

// NewHorizontalLocal creates the ground frame.
func NewHorizontalLocal(conv *Converter, logger *slog.Logger) (*HorizontalLocal, error) {
	h := &HorizontalLocal{}
	b, err := newBase(config{
		geoideName:       domain.FrameHorizontalLocal,
		radius:           1.0,
		realPlanetRadius: 1.0,
		kind:             domain.DomainGround,
		bound:            domain.NewGeoBound(0, -90, 360, 90),
	}, h, conv, logger)
	if err != nil {
		return nil, err
	}
	h.base = b
	return h, nil
}

// Name returns the frame identifier.
func (h *HorizontalLocal) Name() string {
	return string(domain.FrameHorizontalLocal)
}

// Description returns a human-readable description.
func (h *HorizontalLocal) Description() string {
	return horizontalDescription
}

// LongitudeLabel returns "Az".
func (h *HorizontalLocal) LongitudeLabel() string {
	return "Az"
}

// LatitudeLabel returns "Alt".
func (h *HorizontalLocal) LatitudeLabel() string {
	return "Alt"
}

// FormatCoordinates renders azimuth and altitude in degrees.
func (h *HorizontalLocal) FormatCoordinates(geo []float64) [2]string {
	if len(geo) < 2 {
		return [2]string{}
	}
	return [2]string{
		h.LongitudeLabel() + " = " + formatDecimal(geo[0], 3) + "°",
		h.LatitudeLabel() + " = " + formatDecimal(geo[1], 3) + "°",
	}
}

// Azimuth grows eastward from north while longitude grows the other way
// around the up axis, so both hooks mirror it.
func (h *HorizontalLocal) setupPosBeforeTrans(pos []float64) {
	pos[0] = mirrorAzimuth(pos[0])
}

func (h *HorizontalLocal) setupPosAfterTrans(pos []float64) {
	pos[0] = mirrorAzimuth(pos[0])
}

func mirrorAzimuth(az float64) float64 {
	if az < 0 {
		return -az
	}
	return 360 - az
}
