package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/input"
)

// noProjection selects the unprojected frame even when a default projection
// is configured.
const noProjection = "none"

// selector reads frame, projection, lambda0 and pole, falling back to the
// server defaults for omitted parameters.
func (s *Server) selector(q url.Values, frame string) (input.FrameSelector, error) {
	sel := s.defaults
	if frame != "" {
		sel.Frame = domain.FrameID(frame)
	}
	if sel.Frame == "" {
		return sel, missing("frame")
	}

	if q.Has("projection") {
		sel.Projection = q.Get("projection")
	}
	if strings.EqualFold(sel.Projection, noProjection) {
		sel.Projection = ""
	}
	if q.Has("lambda0") {
		v, err := floatParam(q, "lambda0")
		if err != nil {
			return sel, err
		}
		sel.Lambda0 = v
	}
	if q.Has("pole") {
		sel.Pole = q.Get("pole")
	}
	return sel, nil
}

// floatParam parses a required float query parameter.
func floatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, missing(name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.ParameterError{
			Field:   name,
			Message: fmt.Sprintf("invalid %s parameter %q", name, raw),
			Err:     domain.ErrInvalidArgument,
		}
	}
	return v, nil
}

// vector parses the named parameters in order. Names in optional may be
// omitted and default to zero.
func vector(q url.Values, names []string, optional ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		if !q.Has(name) && contains(optional, name) {
			continue
		}
		v, err := floatParam(q, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func missing(name string) error {
	return &domain.ParameterError{
		Field:   name,
		Message: fmt.Sprintf("%s parameter is required", name),
		Err:     domain.ErrMissingParameter,
	}
}

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedConversion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err with the status it maps to. Server errors are
// logged and their details hidden from the client.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		s.writeError(w, status, "internal error")
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeError(w, status, validationErr.Message)
		return
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}
