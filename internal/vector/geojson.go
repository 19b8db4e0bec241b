// Package vector reads ground-truth observation points from GeoJSON and CSV.
// Readers only decode; coordinates are expected to arrive already expressed
// in the raster's coordinate reference system.
package vector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
)

// PointSet is a decoded point collection with its declared CRS, if any.
type PointSet struct {
	CRS    string
	Points []domain.Point
}

// GeoJSON wire types. Only Point and MultiPoint geometries are accepted;
// the original survey data is point observations, anything else is a
// malformed upload.

type featureCollection struct {
	Type     string    `json:"type"`
	CRS      *namedCRS `json:"crs,omitempty"`
	Features []feature `json:"features"`
}

type namedCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type feature struct {
	Type     string   `json:"type"`
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeoJSON decodes a FeatureCollection of point features. The legacy
// "crs" member, when present, supplies the CRS name; GeoJSON without it
// yields an empty CRS (unknown).
func ParseGeoJSON(r io.Reader) (PointSet, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return PointSet{}, fmt.Errorf("parse geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return PointSet{}, fmt.Errorf("parse geojson: expected FeatureCollection, got %q", fc.Type)
	}

	set := PointSet{}
	if fc.CRS != nil {
		set.CRS = strings.TrimSpace(fc.CRS.Properties.Name)
	}

	for i, f := range fc.Features {
		switch f.Geometry.Type {
		case "Point":
			var coords []float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
				return PointSet{}, fmt.Errorf("parse geojson: feature %d: malformed point coordinates", i)
			}
			set.Points = append(set.Points, domain.Point{X: coords[0], Y: coords[1]})
		case "MultiPoint":
			var coords [][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
				return PointSet{}, fmt.Errorf("parse geojson: feature %d: malformed multipoint coordinates", i)
			}
			for _, c := range coords {
				if len(c) < 2 {
					return PointSet{}, fmt.Errorf("parse geojson: feature %d: malformed multipoint coordinates", i)
				}
				set.Points = append(set.Points, domain.Point{X: c[0], Y: c[1]})
			}
		default:
			return PointSet{}, fmt.Errorf("parse geojson: feature %d: unsupported geometry %q", i, f.Geometry.Type)
		}
	}

	return set, nil
}

// ParsePointSetJSON decodes the point-set shapes accepted over the API:
// either a GeoJSON FeatureCollection or the compact form
// {"crs": "...", "coordinates": [[x, y], ...]}.
func ParsePointSetJSON(data []byte) (PointSet, error) {
	var probe struct {
		Type        string      `json:"type"`
		CRS         json.RawMessage `json:"crs"`
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return PointSet{}, fmt.Errorf("parse point set: %w", err)
	}

	if probe.Type == "FeatureCollection" {
		return ParseGeoJSON(bytes.NewReader(data))
	}

	if probe.Coordinates == nil {
		return PointSet{}, fmt.Errorf("parse point set: expected a FeatureCollection or a coordinates array")
	}

	set := PointSet{}
	// In the compact form crs is a plain string.
	if len(probe.CRS) > 0 {
		var crs string
		if err := json.Unmarshal(probe.CRS, &crs); err != nil {
			return PointSet{}, fmt.Errorf("parse point set: crs: %w", err)
		}
		set.CRS = strings.TrimSpace(crs)
	}
	for i, c := range probe.Coordinates {
		if len(c) < 2 {
			return PointSet{}, fmt.Errorf("parse point set: coordinate %d: expected [x, y]", i)
		}
		set.Points = append(set.Points, domain.Point{X: c[0], Y: c[1]})
	}
	return set, nil
}

// LoadPoints reads a point file, dispatching on extension: .geojson/.json
// for GeoJSON, .csv for coordinate CSV.
func LoadPoints(path string) (PointSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return PointSet{}, fmt.Errorf("open points: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "geojson", "json":
		set, err := ParseGeoJSON(f)
		if err != nil {
			return PointSet{}, fmt.Errorf("%s: %w", path, err)
		}
		return set, nil
	case "csv":
		set, err := ParseCSV(f)
		if err != nil {
			return PointSet{}, fmt.Errorf("%s: %w", path, err)
		}
		return set, nil
	default:
		return PointSet{}, fmt.Errorf("%s: unsupported point format %q", path, ext)
	}
}
