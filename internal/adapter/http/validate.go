package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
	"github.com/couchcryptid/flood-validation-service/internal/pipeline"
	"github.com/couchcryptid/flood-validation-service/internal/raster"
	"github.com/couchcryptid/flood-validation-service/internal/vector"
)

// validateRequest is the POST /v1/validations body. Each point-set field is
// a GeoJSON FeatureCollection or the compact {"crs", "coordinates"} form.
type validateRequest struct {
	RasterPath     string          `json:"raster_path"`
	FloodPoints    json.RawMessage `json:"flood_points"`
	NonFloodPoints json.RawMessage `json:"non_flood_points"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if req.RasterPath == "" || len(req.FloodPoints) == 0 || len(req.NonFloodPoints) == 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("raster_path, flood_points, and non_flood_points are all required: %w", domain.ErrMissingInput))
		return
	}

	rasterPath, err := s.resolveRasterPath(req.RasterPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	flood, err := vector.ParsePointSetJSON(req.FloodPoints)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("flood_points: %w", err))
		return
	}
	nonFlood, err := vector.ParsePointSetJSON(req.NonFloodPoints)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("non_flood_points: %w", err))
		return
	}

	report, err := s.validator.Validate(r.Context(), pipeline.Request{
		RasterPath: rasterPath,
		Flood:      flood,
		NonFlood:   nonFlood,
	})
	if err != nil {
		s.logger.Warn("validation request failed", "raster", req.RasterPath, "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// resolveRasterPath joins the requested path with the data directory and
// rejects anything that would escape it.
func (s *Server) resolveRasterPath(path string) (string, error) {
	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("raster_path %q must be relative to the data directory", path)
	}
	return filepath.Join(s.dataDir, path), nil
}

// statusFor maps the domain error taxonomy onto HTTP status codes. The core
// returns typed errors and performs no rendering of its own.
func statusFor(err error) int {
	var crsErr *domain.CRSMismatchError
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return http.StatusBadRequest
	case errors.As(err, &crsErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, raster.ErrLoad):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
