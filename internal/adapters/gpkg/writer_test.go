package gpkg

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

var testEntries = []output.SpatialRefSys{
	{
		Name:         "CRS:84",
		ID:           4326,
		Organization: "EPSG",
		OrgID:        4326,
		Definition:   `GEOGCS["CRS:84"]`,
		Description:  "WGS84 longitude/latitude",
	},
	{
		Name:         "Mars_2000",
		ID:           49901,
		Organization: "IAU2000",
		OrgID:        49901,
		Definition:   `GEOGCS["Mars_2000"]`,
	},
}

func TestWriteSRS(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "frames.gpkg")

	w := NewWriter()
	if err := w.WriteSRS(ctx, path, testEntries); err != nil {
		t.Fatalf("WriteSRS() error = %v", err)
	}

	got, err := ReadSRS(ctx, path)
	if err != nil {
		t.Fatalf("ReadSRS() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got))
	}
	if got[0] != testEntries[0] {
		t.Errorf("entries[0] = %+v, want %+v", got[0], testEntries[0])
	}
	if got[1].Name != "Mars_2000" || got[1].Description != "" {
		t.Errorf("entries[1] = %+v", got[1])
	}
}

func TestWriteSRSUpsert(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "frames.gpkg")
	w := NewWriter()

	if err := w.WriteSRS(ctx, path, testEntries); err != nil {
		t.Fatalf("WriteSRS() error = %v", err)
	}

	updated := testEntries[1]
	updated.Description = "Mars 2000 body-fixed"
	if err := w.WriteSRS(ctx, path, []output.SpatialRefSys{updated}); err != nil {
		t.Fatalf("WriteSRS() second call error = %v", err)
	}

	got, err := ReadSRS(ctx, path)
	if err != nil {
		t.Fatalf("ReadSRS() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got))
	}
	if got[1].Description != "Mars 2000 body-fixed" {
		t.Errorf("description = %q, want updated value", got[1].Description)
	}
}

func TestWriteSRSHeader(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "frames.gpkg")

	if err := NewWriter().WriteSRS(ctx, path, nil); err != nil {
		t.Fatalf("WriteSRS() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	var appID, version int
	if err := db.QueryRow("PRAGMA application_id").Scan(&appID); err != nil {
		t.Fatalf("application_id: %v", err)
	}
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("user_version: %v", err)
	}
	if appID != applicationID || version != userVersion {
		t.Errorf("header = (%#x, %d), want (%#x, %d)", appID, version, applicationID, userVersion)
	}
}

func TestWriteSRSErrors(t *testing.T) {
	ctx := context.Background()

	if err := NewWriter().WriteSRS(ctx, "", testEntries); !errors.Is(err, domain.ErrMissingParameter) {
		t.Errorf("WriteSRS(\"\") error = %v, want ErrMissingParameter", err)
	}

	if _, err := ReadSRS(ctx, filepath.Join(t.TempDir(), "missing.gpkg")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ReadSRS(missing) error = %v, want ErrNotFound", err)
	}
}
