package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/sphaera/internal/application"
	"github.com/jobrunner/sphaera/internal/domain"
)

// maxQueryBody caps the size of a query request body.
const maxQueryBody = 8 << 20

// queryRequest is the body of POST /datasets/query. Either bbox or geometry
// must be set; a bare GeoJSON geometry is accepted as well.
type queryRequest struct {
	BBox     []float64         `json:"bbox"`
	Frame    string            `json:"frame"`
	Dataset  string            `json:"dataset"`
	Limit    int               `json:"limit"`
	Geometry *geojson.Geometry `json:"geometry"`
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.datasets.ListDatasets(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	out := make([]map[string]interface{}, len(datasets))
	for i := range datasets {
		out[i] = formatDataset(&datasets[i])
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": out,
		"count":    len(out),
	})
}

// handleGetDataset returns dataset metadata; features=true adds the
// features as a GeoJSON FeatureCollection in the globe frame.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.datasets.GetDataset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	out := formatDataset(ds)
	if withFeatures, _ := strconv.ParseBool(r.URL.Query().Get("features")); withFeatures {
		out["features"] = featureCollection(ds.Features)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleQueryDatasets(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(http.MaxBytesReader(w, r.Body, maxQueryBody))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	resp, err := s.datasets.QueryBound(r.Context(), q)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, res := range resp.Results {
		results[i] = map[string]interface{}{
			"dataset_id":    res.DatasetID,
			"dataset_name":  res.DatasetName,
			"feature_count": len(res.Features),
			"features":      featureCollection(res.Features),
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":            results,
		"total_features":     resp.TotalFeatures,
		"processing_time_ms": resp.ProcessingTime.Milliseconds(),
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.sync.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			w.Header().Set("Retry-After", strconv.Itoa(int(application.SyncCooldown.Seconds())))
			s.writeError(w, http.StatusTooManyRequests, "sync was triggered recently, try again later")
			return
		}
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func parseQuery(body io.Reader) (domain.BoundQuery, error) {
	var q domain.BoundQuery

	data, err := io.ReadAll(body)
	if err != nil {
		return q, fmt.Errorf("reading query body: %v: %w", err, domain.ErrMalformedInput)
	}

	var req queryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return q, fmt.Errorf("decoding query body: %v: %w", err, domain.ErrMalformedInput)
	}

	switch {
	case req.BBox != nil:
		if len(req.BBox) != 4 {
			return q, &domain.ParameterError{
				Field:   "bbox",
				Message: fmt.Sprintf("bbox needs 4 values [west, south, east, north], got %d", len(req.BBox)),
				Err:     domain.ErrInvalidArgument,
			}
		}
		q.Bound = domain.NewGeoBound(req.BBox[0], req.BBox[1], req.BBox[2], req.BBox[3])
	case req.Geometry != nil:
		q.Geometry = req.Geometry.Geometry()
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil || g.Geometry() == nil {
			return q, missing("bbox or geometry")
		}
		q.Geometry = g.Geometry()
	}

	q.Frame = domain.FrameID(req.Frame)
	q.DatasetID = req.Dataset
	q.Limit = req.Limit
	return q, nil
}

func formatDataset(ds *domain.Dataset) map[string]interface{} {
	out := map[string]interface{}{
		"id":            ds.ID,
		"name":          ds.Name,
		"path":          ds.Path,
		"frame":         ds.Frame,
		"feature_count": ds.FeatureCount(),
		"loaded_at":     ds.LoadedAt,
	}
	if ds.Bound != nil {
		out["bound"] = toBoundJSON(*ds.Bound)
	}
	return out
}

func featureCollection(features []domain.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		if f.Properties != nil {
			gf.Properties = f.Properties
		}
		if f.Bound != nil {
			gf.BBox = geojson.BBox{f.Bound.West, f.Bound.South, f.Bound.East, f.Bound.North}
		}
		fc.Append(gf)
	}
	return fc
}
