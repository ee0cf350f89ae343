// Package gpkg exports frame definitions into the spatial reference system
// table of a GeoPackage.
package gpkg

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

const (
	// applicationID is "GPKG" as a big-endian int32.
	applicationID = 0x47504B47
	// userVersion encodes GeoPackage 1.4.0.
	userVersion = 10400
)

const createSRSTable = `
CREATE TABLE IF NOT EXISTS gpkg_spatial_ref_sys (
	srs_name TEXT NOT NULL,
	srs_id INTEGER NOT NULL PRIMARY KEY,
	organization TEXT NOT NULL,
	organization_coordsys_id INTEGER NOT NULL,
	definition TEXT NOT NULL,
	description TEXT
)`

const upsertSRS = `
INSERT OR REPLACE INTO gpkg_spatial_ref_sys
	(srs_name, srs_id, organization, organization_coordsys_id, definition, description)
VALUES (?, ?, ?, ?, ?, ?)`

// Writer implements output.SRSWriter on a SQLite GeoPackage file.
type Writer struct{}

// NewWriter creates a new GeoPackage SRS writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteSRS creates the GeoPackage at path if needed and upserts every entry
// into gpkg_spatial_ref_sys. Existing rows with other identifiers are kept.
func (w *Writer) WriteSRS(ctx context.Context, path string, entries []output.SpatialRefSys) error {
	if path == "" {
		return &domain.ParameterError{Field: "path", Err: domain.ErrMissingParameter}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &domain.StorageError{Operation: "export", Key: path, Err: err}
		}
	}

	db, err := openDB(path)
	if err != nil {
		return &domain.StorageError{Operation: "export", Key: path, Err: err}
	}
	defer func() { _ = db.Close() }()

	if err := initialize(ctx, db); err != nil {
		return &domain.StorageError{Operation: "export", Key: path, Err: err}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Operation: "export", Key: path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSRS)
	if err != nil {
		return &domain.StorageError{Operation: "export", Key: path, Err: err}
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Name, e.ID, e.Organization, e.OrgID, e.Definition, e.Description); err != nil {
			return &domain.StorageError{
				Operation: "export",
				Key:       path,
				Err:       fmt.Errorf("srs %d (%s): %w", e.ID, e.Name, err),
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Operation: "export", Key: path, Err: err}
	}
	return nil
}

// ReadSRS returns the rows of gpkg_spatial_ref_sys ordered by srs_id.
func ReadSRS(ctx context.Context, path string) ([]output.SpatialRefSys, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &domain.StorageError{Operation: "read", Key: path, Err: domain.ErrNotFound}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Key: path, Err: err}
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `
		SELECT srs_name, srs_id, organization, organization_coordsys_id, definition, COALESCE(description, '')
		FROM gpkg_spatial_ref_sys
		ORDER BY srs_id`)
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Key: path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var entries []output.SpatialRefSys
	for rows.Next() {
		var e output.SpatialRefSys
		if err := rows.Scan(&e.Name, &e.ID, &e.Organization, &e.OrgID, &e.Definition, &e.Description); err != nil {
			return nil, &domain.StorageError{Operation: "read", Key: path, Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Operation: "read", Key: path, Err: err}
	}
	return entries, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=DELETE&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// A single connection keeps the pragmas on the connection that writes.
	db.SetMaxOpenConns(1)
	return db, nil
}

func initialize(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA application_id = %d", applicationID)); err != nil {
		return fmt.Errorf("setting application_id: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", userVersion)); err != nil {
		return fmt.Errorf("setting user_version: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSRSTable); err != nil {
		return fmt.Errorf("creating gpkg_spatial_ref_sys: %w", err)
	}
	return nil
}
