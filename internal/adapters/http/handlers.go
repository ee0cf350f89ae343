package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/input"
)

type boundJSON struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

func toBoundJSON(b domain.GeoBound) boundJSON {
	return boundJSON{West: b.West, South: b.South, East: b.East, North: b.North}
}

type frameJSON struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	Radius         float64   `json:"radius"`
	RealRadius     float64   `json:"real_radius"`
	HeightScale    float64   `json:"height_scale"`
	Bound          boundJSON `json:"bound"`
	LongitudeLabel string    `json:"longitude_label"`
	LatitudeLabel  string    `json:"latitude_label"`
	Projection     string    `json:"projection,omitempty"`
	WKT            string    `json:"wkt"`
}

func toFrameJSON(f input.FrameInfo) frameJSON {
	return frameJSON{
		ID:             string(f.ID),
		Name:           f.Name,
		Description:    f.Description,
		Type:           f.Type.String(),
		Radius:         f.Radius,
		RealRadius:     f.RealRadius,
		HeightScale:    f.HeightScale,
		Bound:          toBoundJSON(f.Bound),
		LongitudeLabel: f.LongitudeLabel,
		LatitudeLabel:  f.LatitudeLabel,
		Projection:     f.Projection,
		WKT:            f.WKT,
	}
}

type positionJSON struct {
	Frame  string  `json:"frame"`
	Lon    float64 `json:"lon"`
	Lat    float64 `json:"lat"`
	Height float64 `json:"height"`
}

func toPositionJSON(p domain.Position) positionJSON {
	return positionJSON{Frame: string(p.Frame), Lon: p.Lon, Lat: p.Lat, Height: p.Height}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":          boolToStatus(details.Healthy),
		"ready":           details.Ready,
		"globe_frame":     details.GlobeFrame,
		"frames":          details.Frames,
		"datasets_loaded": details.DatasetsLoaded,
		"features_loaded": details.FeaturesLoaded,
		"components":      details.Components,
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

func (s *Server) handleListFrames(w http.ResponseWriter, _ *http.Request) {
	frames := s.coords.Frames()
	out := make([]frameJSON, len(frames))
	for i, f := range frames {
		out[i] = toFrameJSON(f)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frames": out,
		"count":  len(out),
	})
}

func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selector(r.URL.Query(), mux.Vars(r)["frame"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	info, err := s.coords.Frame(sel)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toFrameJSON(*info))
}

// handleConvert re-expresses lon/lat[/height] from one frame into another.
// from defaults to the globe frame.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	geo, err := vector(q, []string{"lon", "lat", "height"}, "height")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	to := q.Get("to")
	if to == "" {
		s.handleError(w, r, missing("to"))
		return
	}
	from := domain.FrameID(q.Get("from"))
	if from == "" {
		from = s.defaults.Frame
	}

	pos := domain.Position{Lon: geo[0], Lat: geo[1], Height: geo[2], Frame: from}
	result, err := s.coords.Convert(pos, domain.FrameID(to))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"from": toPositionJSON(pos),
		"to":   toPositionJSON(result),
	})
}

func (s *Server) handleCartesian(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := s.selector(q, q.Get("frame"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	geo, err := vector(q, []string{"lon", "lat", "height"}, "height")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	xyz, err := s.coords.ToCartesian(sel, geo)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame":      sel.Frame,
		"projection": sel.Projection,
		"geo":        geo,
		"xyz":        xyz,
	})
}

func (s *Server) handleGeographic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := s.selector(q, q.Get("frame"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	xyz, err := vector(q, []string{"x", "y", "z"})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	geo, err := s.coords.FromCartesian(sel, xyz)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame":      sel.Frame,
		"projection": sel.Projection,
		"xyz":        xyz,
		"geo":        geo,
	})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := s.selector(q, q.Get("frame"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	geo, err := vector(q, []string{"lon", "lat", "height"}, "height")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	lhv := q.Get("lhv") == "true" || q.Get("lhv") == "1"

	m, err := s.coords.LocalTransform(sel, geo, lhv)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame":       sel.Frame,
		"lhv":         lhv,
		"matrix":      m[:],
		"side":        m.SideVector(),
		"front":       m.FrontVector(),
		"up":          m.UpVector(),
		"translation": m.Translation(),
	})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := s.selector(q, q.Get("frame"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	geo, err := vector(q, []string{"lon", "lat"})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	f, err := s.coords.Format(sel, geo)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame":       sel.Frame,
		"labels":      f.Labels,
		"coordinates": f.Coordinates,
		"sexagesimal": f.Sexagesimal,
	})
}

// handleParse reads an HMS longitude and a DMS latitude back into degrees.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := s.selector(q, q.Get("frame"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	values := [2]string{q.Get("lon"), q.Get("lat")}
	if values[0] == "" {
		s.handleError(w, r, missing("lon"))
		return
	}
	if values[1] == "" {
		s.handleError(w, r, missing("lat"))
		return
	}
	geo, err := s.coords.ParseSexagesimal(sel, values)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame": sel.Frame,
		"geo":   geo,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}
