// Package geojson decodes GeoJSON FeatureCollections into datasets.
package geojson

import (
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// Top-level members read from a FeatureCollection besides "features".
const (
	MemberFrame = "frame"
	MemberName  = "name"
)

// maxDatasetSize limits how much of a source is read.
const maxDatasetSize = 256 << 20

// Decoder implements output.DatasetDecoder.
type Decoder struct{}

// NewDecoder creates a GeoJSON decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads a FeatureCollection. The frame comes from the top-level
// "frame" member when present, defaultFrame otherwise. Features without a
// geometry are dropped.
func (d *Decoder) Decode(r io.Reader, defaultFrame domain.FrameID) (*output.DecodedDataset, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDatasetSize))
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding feature collection: %v: %w", err, domain.ErrMalformedInput)
	}

	ds := &output.DecodedDataset{Frame: defaultFrame}
	if v, ok := fc.ExtraMembers[MemberFrame].(string); ok && v != "" {
		ds.Frame = domain.FrameID(v)
	}
	if v, ok := fc.ExtraMembers[MemberName].(string); ok {
		ds.Name = v
	}

	ds.Features = make([]domain.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		ds.Features = append(ds.Features, domain.Feature{
			ID:         featureID(f.ID, i),
			Geometry:   f.Geometry,
			Properties: map[string]interface{}(f.Properties),
		})
	}
	return ds, nil
}

// featureID renders a GeoJSON id, falling back to the feature's index.
func featureID(id interface{}, index int) string {
	switch v := id.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return strconv.Itoa(index)
}
