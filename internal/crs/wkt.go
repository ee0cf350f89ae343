package crs

import (
	"fmt"
	"strconv"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

type srsCode struct {
	organization string
	orgID        int
	srsID        int
	datum        string
}

// Frames without an authority code are numbered in a private range.
var srsCodes = map[domain.FrameID]srsCode{
	domain.FrameWGS84:           {"EPSG", 4326, 4326, "WGS_1984"},
	domain.FrameMars2000:        {"IAU2000", 49901, 49901, "Mars_2000"},
	domain.FrameMoon2000:        {"IAU2000", 30101, 30101, "Moon_2000"},
	domain.FrameSun:             {"IAU2000", 1000, 1000, "Sun"},
	domain.FrameHorizontalLocal: {"NONE", 1, 990001, "Horizontal_Local"},
	domain.FrameEquatorial:      {"NONE", 2, 990002, "Equatorial_J2000"},
	domain.FrameGalactic:        {"NONE", 3, 990003, "Galactic"},
}

// WKT returns a GEOGCS definition of the geographic frame of cs on a sphere
// of its physical radius.
func WKT(cs CRS) string {
	code := codeOf(cs.GeoideName())
	radius := strconv.FormatFloat(cs.Geoide().RealPlanetRadius(), 'f', -1, 64)
	return fmt.Sprintf(
		`GEOGCS["%s",DATUM["D_%s",SPHEROID["%s",%s,0]],PRIMEM["Reference_Meridian",0],UNIT["Degree",0.0174532925199433]]`,
		cs.Name(), code.datum, code.datum, radius,
	)
}

// SpatialRefSys returns the catalogue entry of the frame of cs.
func SpatialRefSys(cs CRS) output.SpatialRefSys {
	code := codeOf(cs.GeoideName())
	return output.SpatialRefSys{
		Name:         cs.Name(),
		ID:           code.srsID,
		Organization: code.organization,
		OrgID:        code.orgID,
		Definition:   WKT(cs),
		Description:  cs.Description(),
	}
}

// Catalogue returns the entries of every frame the factory can build.
func (f *Factory) Catalogue() ([]output.SpatialRefSys, error) {
	frames := f.Frames()
	entries := make([]output.SpatialRefSys, 0, len(frames))
	for _, id := range frames {
		cs, err := f.Create(Options{GeoideName: id})
		if err != nil {
			return nil, fmt.Errorf("building frame %s: %w", id, err)
		}
		entries = append(entries, SpatialRefSys(cs))
	}
	return entries, nil
}

func codeOf(id domain.FrameID) srsCode {
	if c, ok := srsCodes[Canonical(id)]; ok {
		return c
	}
	return srsCode{organization: "NONE", datum: string(id)}
}
