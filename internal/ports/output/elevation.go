package output

// ElevationSource defines the secondary port for terrain height lookups.
type ElevationSource interface {
	// Elevation returns the height in meters at lon/lat degrees.
	Elevation(lon, lat float64) float64
}
