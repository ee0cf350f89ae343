package output

import "context"

// SpatialRefSys is one entry of a spatial reference system catalogue.
type SpatialRefSys struct {
	Name         string // Display name
	ID           int    // Numeric identifier
	Organization string // Defining organization
	OrgID        int    // Identifier within the organization
	Definition   string // WKT definition
	Description  string
}

// SRSWriter defines the secondary port for exporting frame definitions.
type SRSWriter interface {
	// WriteSRS writes the entries to the catalogue at path.
	WriteSRS(ctx context.Context, path string, entries []SpatialRefSys) error
}
