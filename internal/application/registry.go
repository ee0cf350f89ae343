package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// DefaultQueryLimit caps the features returned by a bound query.
const DefaultQueryLimit = 1000

// DatasetRegistry manages the datasets loaded from storage. Every feature is
// re-expressed in the globe frame when it is loaded.
type DatasetRegistry struct {
	mu           sync.RWMutex
	datasets     map[string]*datasetEntry
	storage      output.DatasetStorage
	decoder      output.DatasetDecoder
	globe        domain.FrameConverter
	defaultFrame domain.FrameID
	queryLimit   int
	metrics      output.MetricsCollector
	logger       *slog.Logger
}

type datasetEntry struct {
	Dataset *domain.Dataset
	Object  output.StorageObject
}

// DatasetRegistryConfig holds configuration for the dataset registry.
type DatasetRegistryConfig struct {
	// DefaultFrame applies to sources without a frame tag.
	DefaultFrame domain.FrameID
	// QueryLimit caps query results; zero means DefaultQueryLimit.
	QueryLimit int
}

// NewDatasetRegistry creates a new dataset registry. globe is the frame
// features are folded into.
func NewDatasetRegistry(
	storage output.DatasetStorage,
	decoder output.DatasetDecoder,
	globe domain.FrameConverter,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg DatasetRegistryConfig,
) *DatasetRegistry {
	if cfg.DefaultFrame == "" {
		cfg.DefaultFrame = domain.FrameWGS84
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = DefaultQueryLimit
	}
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &DatasetRegistry{
		datasets:     make(map[string]*datasetEntry),
		storage:      storage,
		decoder:      decoder,
		globe:        globe,
		defaultFrame: cfg.DefaultFrame,
		queryLimit:   cfg.QueryLimit,
		metrics:      metrics,
		logger:       logger,
	}
}

// GlobeFrame returns the frame features are expressed in.
func (r *DatasetRegistry) GlobeFrame() domain.FrameID {
	return r.globe.GeoideName()
}

// LoadDataset reads, decodes and registers the dataset stored under key.
// A dataset with the same ID is replaced.
func (r *DatasetRegistry) LoadDataset(ctx context.Context, key string) error {
	return r.load(ctx, output.StorageObject{Key: key})
}

func (r *DatasetRegistry) load(ctx context.Context, obj output.StorageObject) error {
	id := output.DatasetID(obj.Key)
	r.logger.Info("loading dataset", "key", obj.Key)

	start := time.Now()
	rc, err := r.storage.Open(ctx, obj.Key)
	r.metrics.ObserveStorageDuration("open", time.Since(start))
	r.metrics.IncStorageOperations("open", err == nil)
	if err != nil {
		r.logger.Error("failed to open dataset", "key", obj.Key, "error", err)
		return err
	}
	defer rc.Close()

	decoded, err := r.decoder.Decode(rc, r.defaultFrame)
	if err != nil {
		r.logger.Error("failed to decode dataset", "key", obj.Key, "error", err)
		return &domain.DatasetError{DatasetID: id, Err: err}
	}
	if !domain.IsKnownFrame(decoded.Frame) {
		return &domain.DatasetError{DatasetID: id, Err: &domain.FrameError{Frame: decoded.Frame}}
	}

	ds := &domain.Dataset{
		ID:       id,
		Name:     decoded.Name,
		Path:     obj.Key,
		Frame:    decoded.Frame,
		Features: make([]domain.Feature, 0, len(decoded.Features)),
		LoadedAt: time.Now(),
	}
	if ds.Name == "" {
		ds.Name = id
	}

	for _, f := range decoded.Features {
		folded, err := r.fold(f, decoded.Frame)
		if err != nil {
			r.logger.Warn("skipping feature", "dataset", id, "feature", f.ID, "error", err)
			continue
		}
		ds.Features = append(ds.Features, folded)
		ds.Bound = union(ds.Bound, folded.Bound)
	}

	r.mu.Lock()
	r.datasets[id] = &datasetEntry{Dataset: ds, Object: obj}
	r.mu.Unlock()

	r.updateMetrics()
	r.logger.Info("dataset loaded", "id", id, "frame", ds.Frame, "features", len(ds.Features))
	return nil
}

// fold re-expresses the feature geometry in the globe frame and computes its
// bound there.
func (r *DatasetRegistry) fold(f domain.Feature, frame domain.FrameID) (domain.Feature, error) {
	vertices := vertexList(f.Geometry)
	if len(vertices) == 0 {
		return f, &domain.DatasetError{Feature: f.ID, Err: fmt.Errorf("empty geometry: %w", domain.ErrMalformedInput)}
	}

	bound := &domain.GeoBound{}
	converted, err := bound.ComputeFromCoordinatesInCrsTo(vertices, frame, r.globe)
	if err != nil {
		return f, err
	}

	f.Geometry = rebuild(f.Geometry, converted)
	f.Bound = bound
	return f, nil
}

// UnloadDataset removes a dataset.
func (r *DatasetRegistry) UnloadDataset(_ context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.datasets[id]
	delete(r.datasets, id)
	r.mu.Unlock()

	if !ok {
		return domain.ErrDatasetNotFound
	}
	r.logger.Info("dataset unloaded", "id", id)
	r.updateMetrics()
	return nil
}

// ListDatasets returns all loaded datasets sorted by ID.
func (r *DatasetRegistry) ListDatasets(_ context.Context) ([]domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	datasets := make([]domain.Dataset, 0, len(r.datasets))
	for _, entry := range r.datasets {
		datasets = append(datasets, *entry.Dataset)
	}
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].ID < datasets[j].ID })
	return datasets, nil
}

// GetDataset returns a specific dataset by ID.
func (r *DatasetRegistry) GetDataset(_ context.Context, id string) (*domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.datasets[id]
	if !ok {
		return nil, domain.ErrDatasetNotFound
	}
	return entry.Dataset, nil
}

// IsLoaded returns true if a dataset with the given ID is loaded.
func (r *DatasetRegistry) IsLoaded(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.datasets[id]
	return ok
}

// DatasetCount returns the number of loaded datasets.
func (r *DatasetRegistry) DatasetCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}

// FeatureCount returns the number of loaded features across all datasets.
func (r *DatasetRegistry) FeatureCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, entry := range r.datasets {
		n += entry.Dataset.FeatureCount()
	}
	return n
}

// QueryBound returns the features intersecting q. A geometry query tests the
// feature bounds against every part of the geometry; otherwise the bound is
// tested against the feature geometry.
func (r *DatasetRegistry) QueryBound(ctx context.Context, q domain.BoundQuery) (resp *domain.BoundQueryResponse, err error) {
	start := time.Now()
	defer func() {
		r.metrics.IncOperationCount(OpQueryBound, string(r.GlobeFrame()), err == nil)
		r.metrics.ObserveOperationDuration(OpQueryBound, time.Since(start))
	}()

	match, err := r.matcher(q)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 || limit > r.queryLimit {
		limit = r.queryLimit
	}

	datasets, err := r.selectDatasets(ctx, q.DatasetID)
	if err != nil {
		return nil, err
	}

	resp = &domain.BoundQueryResponse{}
	for _, ds := range datasets {
		if resp.TotalFeatures >= limit {
			break
		}
		if ds.Bound == nil {
			continue
		}

		result := domain.BoundQueryResult{DatasetID: ds.ID, DatasetName: ds.Name}
		for _, f := range ds.Features {
			if f.Bound == nil || !match(&f) {
				continue
			}
			result.Features = append(result.Features, f)
			if resp.TotalFeatures+len(result.Features) >= limit {
				break
			}
		}
		if len(result.Features) > 0 {
			resp.AddResult(result)
		}
	}

	resp.ProcessingTime = time.Since(start)
	return resp, nil
}

// matcher validates q and returns the feature predicate it describes.
func (r *DatasetRegistry) matcher(q domain.BoundQuery) (func(*domain.Feature) bool, error) {
	if q.Geometry != nil {
		return func(f *domain.Feature) bool {
			return f.Bound.IntersectsGeometry(q.Geometry)
		}, nil
	}

	if q.Bound == nil {
		return nil, &domain.ValidationError{
			Field:      "bound",
			Constraint: "bound or geometry",
			Message:    "a query needs a bound or a geometry",
		}
	}
	if !q.Bound.IsValid() {
		return nil, &domain.ValidationError{
			Field:      "bound",
			Value:      q.Bound.String(),
			Constraint: "west <= east, south <= north",
			Message:    "bound edges are not ordered",
		}
	}

	bound := *q.Bound
	if q.Frame != "" && q.Frame != r.GlobeFrame() {
		corners := [][]float64{{bound.West, bound.South}, {bound.East, bound.North}}
		if _, err := bound.ComputeFromCoordinatesInCrsTo(corners, q.Frame, r.globe); err != nil {
			return nil, err
		}
	}

	return func(f *domain.Feature) bool {
		switch g := f.Geometry.(type) {
		case orb.Point:
			return bound.IsPointInside([]float64{g[0], g[1]})
		case orb.LineString, orb.MultiLineString, orb.Polygon, orb.MultiPolygon:
			return bound.IntersectsGeometry(g)
		}
		return bound.Intersects(f.Bound)
	}, nil
}

func (r *DatasetRegistry) selectDatasets(_ context.Context, id string) ([]*domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id != "" {
		entry, ok := r.datasets[id]
		if !ok {
			return nil, domain.ErrDatasetNotFound
		}
		return []*domain.Dataset{entry.Dataset}, nil
	}

	datasets := make([]*domain.Dataset, 0, len(r.datasets))
	for _, entry := range r.datasets {
		datasets = append(datasets, entry.Dataset)
	}
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].ID < datasets[j].ID })
	return datasets, nil
}

// updateMetrics updates the metrics collector with current counts.
func (r *DatasetRegistry) updateMetrics() {
	r.metrics.SetDatasetsLoaded(r.DatasetCount())
	r.metrics.SetFeaturesLoaded(r.FeatureCount())
}

// LoadAll loads all datasets from storage.
func (r *DatasetRegistry) LoadAll(ctx context.Context) error {
	r.logger.Info("loading all datasets from storage")

	objects, err := r.list(ctx)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		if err := r.load(ctx, obj); err != nil {
			r.logger.Error("failed to load dataset", "key", obj.Key, "error", err)
		}
	}
	return nil
}

func (r *DatasetRegistry) list(ctx context.Context) ([]output.StorageObject, error) {
	start := time.Now()
	objects, err := r.storage.List(ctx)
	r.metrics.ObserveStorageDuration("list", time.Since(start))
	r.metrics.IncStorageOperations("list", err == nil)
	return objects, err
}

// SyncStats contains statistics from a sync operation.
type SyncStats struct {
	Added    int
	Reloaded int
	Removed  int
}

// Sync synchronizes with storage: new datasets are loaded, changed ones
// reloaded and datasets no longer in storage removed.
func (r *DatasetRegistry) Sync(ctx context.Context) (SyncStats, error) {
	r.logger.Info("syncing datasets from storage")

	objects, err := r.list(ctx)
	if err != nil {
		return SyncStats{}, err
	}

	remote := make(map[string]output.StorageObject, len(objects))
	for _, obj := range objects {
		remote[output.DatasetID(obj.Key)] = obj
	}

	stats := SyncStats{}
	for id, obj := range remote {
		previous, loaded := r.object(id)
		if loaded && !changed(previous, obj) {
			r.logger.Debug("dataset unchanged, skipping", "id", id)
			continue
		}
		if err := r.load(ctx, obj); err != nil {
			r.logger.Error("failed to load dataset", "key", obj.Key, "error", err)
			continue
		}
		if loaded {
			stats.Reloaded++
		} else {
			stats.Added++
		}
	}

	for _, id := range r.findDatasetsToRemove(remote) {
		r.logger.Info("removing dataset not in storage", "id", id)
		if err := r.UnloadDataset(ctx, id); err != nil {
			r.logger.Error("failed to unload removed dataset", "id", id, "error", err)
			continue
		}
		stats.Removed++
	}

	r.logger.Info("sync completed",
		"added", stats.Added,
		"reloaded", stats.Reloaded,
		"removed", stats.Removed,
		"total", r.DatasetCount(),
	)
	return stats, nil
}

func (r *DatasetRegistry) object(id string) (output.StorageObject, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.datasets[id]
	if !ok {
		return output.StorageObject{}, false
	}
	return entry.Object, true
}

// findDatasetsToRemove returns dataset IDs that are loaded but not in storage.
func (r *DatasetRegistry) findDatasetsToRemove(remote map[string]output.StorageObject) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var toRemove []string
	for id := range r.datasets {
		if _, exists := remote[id]; !exists {
			toRemove = append(toRemove, id)
		}
	}
	sort.Strings(toRemove)
	return toRemove
}

// changed compares storage metadata. Objects without metadata are never
// considered changed.
func changed(a, b output.StorageObject) bool {
	if a.ETag != "" || b.ETag != "" {
		return a.ETag != b.ETag
	}
	return a.LastModified != b.LastModified || a.Size != b.Size
}

func union(a, b *domain.GeoBound) *domain.GeoBound {
	if b == nil {
		return a
	}
	if a == nil {
		c := *b
		return &c
	}
	return &domain.GeoBound{
		West:  min(a.West, b.West),
		South: min(a.South, b.South),
		East:  max(a.East, b.East),
		North: max(a.North, b.North),
	}
}
