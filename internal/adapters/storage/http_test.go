package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobrunner/sphaera/internal/domain"
)

func newIndexServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/index.txt", func(w http.ResponseWriter, r *http.Request) {
		if u, p, ok := r.BasicAuth(); !ok || u != "user" || p != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "# datasets\nmars.geojson v3\n\nstars.json\nreadme.md\n")
	})
	mux.HandleFunc("/mars.geojson", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"type": "FeatureCollection", "features": []}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStorageList(t *testing.T) {
	srv := newIndexServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL + "/", Username: "user", Password: "secret"})

	objects, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("len(objects) = %d, want 2", len(objects))
	}
	if objects[0].Key != "mars.geojson" || objects[0].ETag != "v3" {
		t.Errorf("objects[0] = %+v", objects[0])
	}
	if objects[1].Key != "stars.json" || objects[1].ETag != "" {
		t.Errorf("objects[1] = %+v", objects[1])
	}
}

func TestHTTPStorageListUnauthorized(t *testing.T) {
	srv := newIndexServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL})

	var storageErr *domain.StorageError
	if _, err := storage.List(context.Background()); !errors.As(err, &storageErr) {
		t.Errorf("List() error = %v, want StorageError", err)
	}
}

func TestHTTPStorageOpenAndExists(t *testing.T) {
	srv := newIndexServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL})
	ctx := context.Background()

	rc, err := storage.Open(ctx, "mars.geojson")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = rc.Close()

	if _, err := storage.Open(ctx, "missing.geojson"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}

	ok, err := storage.Exists(ctx, "mars.geojson")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
	ok, err = storage.Exists(ctx, "missing.geojson")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestObjectKeys(t *testing.T) {
	if got := fullKey("", "a.geojson"); got != "a.geojson" {
		t.Errorf("fullKey() = %q", got)
	}
	if got := fullKey("data", "a.geojson"); got != "data/a.geojson" {
		t.Errorf("fullKey() = %q", got)
	}
	if got := relativeKey("data/sky/a.geojson", "data"); got != "sky/a.geojson" {
		t.Errorf("relativeKey() = %q", got)
	}
}
