package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// Dataset is a collection of features ingested from storage, tagged with the
// frame its coordinates are expressed in.
type Dataset struct {
	ID       string    // Unique identifier (derived from the file name)
	Name     string    // Display name
	Path     string    // Source file path or object key
	Frame    FrameID   // Frame of the source coordinates
	Features []Feature // Features re-expressed in the globe frame
	Bound    *GeoBound // Bound of all features in the globe frame
	LoadedAt time.Time // Load timestamp
}

// FeatureCount returns the number of features.
func (d *Dataset) FeatureCount() int {
	return len(d.Features)
}

// Feature is a single geometry with its properties.
type Feature struct {
	ID         string                 // Feature identifier
	Geometry   orb.Geometry           // Geometry in the globe frame
	Properties map[string]interface{} // Attribute data
	Bound      *GeoBound              // Bound in the globe frame
}

// GetProperty returns a property value by key.
func (f *Feature) GetProperty(key string) (interface{}, bool) {
	if f.Properties == nil {
		return nil, false
	}
	v, ok := f.Properties[key]
	return v, ok
}

// GetStringProperty returns a property as string.
func (f *Feature) GetStringProperty(key string) string {
	if v, ok := f.GetProperty(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// BoundQuery selects the features intersecting a bound or a geometry.
type BoundQuery struct {
	Bound     *GeoBound    // Query rectangle
	Frame     FrameID      // Frame of Bound; empty means the globe frame
	Geometry  orb.Geometry // Optional geometry; its parts are tested against feature bounds
	DatasetID string       // Restrict to one dataset (optional)
	Limit     int          // Maximum number of features (0 = service default)
}

// BoundQueryResult contains the features of one dataset matching a query.
type BoundQueryResult struct {
	DatasetID   string
	DatasetName string
	Features    []Feature
}

// BoundQueryResponse aggregates results across datasets.
type BoundQueryResponse struct {
	Results        []BoundQueryResult
	TotalFeatures  int
	ProcessingTime time.Duration
}

// AddResult adds a dataset result and updates the total.
func (r *BoundQueryResponse) AddResult(result BoundQueryResult) {
	r.Results = append(r.Results, result)
	r.TotalFeatures += len(result.Features)
}
