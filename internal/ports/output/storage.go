// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// DatasetStorage defines the secondary port for dataset sources.
type DatasetStorage interface {
	// List returns all GeoJSON dataset objects in the storage.
	List(ctx context.Context) ([]StorageObject, error)

	// Open returns a reader for the given dataset object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageObject represents a dataset file in storage.
type StorageObject struct {
	Key          string // Object key/path
	Size         int64  // Size in bytes
	LastModified int64  // Unix timestamp
	ETag         string // Content hash
}

// StorageType represents the type of storage backend.
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeAzure StorageType = "azure"
	StorageTypeHTTP  StorageType = "http"
	StorageTypeLocal StorageType = "local"
)

// IsDatasetKey reports whether key names a GeoJSON dataset.
func IsDatasetKey(key string) bool {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".geojson", ".json":
		return true
	}
	return false
}

// DatasetID derives a dataset identifier from an object key.
func DatasetID(key string) string {
	base := filepath.Base(key)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
