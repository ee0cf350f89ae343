// Package storage provides dataset storage adapters.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// LocalStorage implements DatasetStorage for a local directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage adapter.
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

// List returns all dataset files below the base directory.
func (s *LocalStorage) List(_ context.Context) ([]output.StorageObject, error) {
	var objects []output.StorageObject

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !output.IsDatasetKey(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}

		objects = append(objects, output.StorageObject{
			Key:          filepath.ToSlash(relPath),
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, &domain.StorageError{Operation: "list", Err: err}
	}

	return objects, nil
}

// Open returns a reader for the given dataset file.
func (s *LocalStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //#nosec G304 -- path is confined to basePath
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		return nil, &domain.StorageError{Operation: "open", Key: key, Err: err}
	}
	return f, nil
}

// Exists checks if a file exists.
func (s *LocalStorage) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// FullPath returns the full path for a key.
func (s *LocalStorage) FullPath(key string) string {
	return filepath.Join(s.basePath, key)
}

// KeyOf returns the key of a file below the base directory.
func (s *LocalStorage) KeyOf(path string) (string, error) {
	base, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside %s: %w", path, s.basePath, domain.ErrInvalidArgument)
	}
	return filepath.ToSlash(rel), nil
}

// resolve maps key into the base directory, rejecting keys that escape it.
func (s *LocalStorage) resolve(key string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", &domain.StorageError{
			Operation: "resolve",
			Key:       key,
			Err:       fmt.Errorf("key escapes storage root: %w", domain.ErrInvalidArgument),
		}
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}
