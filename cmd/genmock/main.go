// Command genmock generates a synthetic flood-susceptibility raster and
// matching flood / non-flood observation point sets for demos and test
// fixtures. It runs the actual validation pipeline on the generated data so
// the printed AUC matches real service behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -flood 60 -nonflood 60 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
	"github.com/couchcryptid/flood-validation-service/internal/pipeline"
	"github.com/couchcryptid/flood-validation-service/internal/raster"
	"github.com/couchcryptid/flood-validation-service/internal/vector"
	"github.com/jonboulle/clockwork"
)

// mockCRS is written to the .prj sidecar and both GeoJSON files so the
// fixtures exercise the CRS consistency check.
const mockCRS = "EPSG:32643"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data/mock", "output directory for generated fixtures")
	cols := flag.Int("cols", 120, "raster width in cells")
	rows := flag.Int("rows", 100, "raster height in cells")
	floodCount := flag.Int("flood", 60, "number of flood observation points")
	nonFloodCount := flag.Int("nonflood", 60, "number of non-flood observation points")
	seed := flag.Int64("seed", 42, "random seed for reproducible fixtures")
	flag.Parse()

	// Fixed clock for reproducible ComputedAt timestamps in the printed report.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // deterministic fixtures, not crypto

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	grid := buildGrid(*cols, *rows, rng)

	rasterPath := filepath.Join(*outDir, "susceptibility.asc")
	if err := writeASCIIGrid(rasterPath, grid); err != nil {
		return fmt.Errorf("write raster: %w", err)
	}
	if err := os.WriteFile(strings.TrimSuffix(rasterPath, ".asc")+".prj", []byte(mockCRS+"\n"), 0o644); err != nil {
		return fmt.Errorf("write prj: %w", err)
	}
	log.Printf("wrote raster: %s (%dx%d)", rasterPath, *cols, *rows)

	// Flood points favor high-susceptibility cells, non-flood points low
	// ones, so the fixture separates with a high but imperfect AUC.
	flood := drawPoints(grid, *floodCount, rng, func(score float64) bool {
		return rng.Float64() < score
	})
	nonFlood := drawPoints(grid, *nonFloodCount, rng, func(score float64) bool {
		return rng.Float64() < 1-score
	})

	for _, out := range []struct {
		name   string
		points []domain.Point
	}{
		{"flood_points.geojson", flood},
		{"nonflood_points.geojson", nonFlood},
	} {
		path := filepath.Join(*outDir, out.name)
		if err := writeGeoJSON(path, out.points); err != nil {
			return fmt.Errorf("write %s: %w", out.name, err)
		}
		log.Printf("wrote %d points: %s", len(out.points), path)
	}

	// Run the real pipeline against the files just written.
	loaded, err := raster.LoadASCIIGrid(rasterPath)
	if err != nil {
		return fmt.Errorf("reload raster: %w", err)
	}
	report, err := pipeline.Evaluate(loaded,
		vector.PointSet{CRS: mockCRS, Points: flood},
		vector.PointSet{CRS: mockCRS, Points: nonFlood},
	)
	if err != nil {
		return fmt.Errorf("evaluate fixtures: %w", err)
	}

	log.Printf("fixture AUC: %.4f (%d flood, %d non-flood valid samples)",
		report.AUC, report.Flood.Valid, report.NonFlood.Valid)
	return nil
}

// buildGrid produces a susceptibility surface that rises from west to east
// with mild noise, plus a no-data stripe so fixtures exercise missing-value
// filtering.
func buildGrid(cols, rows int, rng *rand.Rand) *raster.Grid {
	meta := raster.Grid{
		CRS:      mockCRS,
		Cols:     cols,
		Rows:     rows,
		XMin:     500000,
		YMin:     3600000,
		CellSize: 30,
		NoData:   -9999,
	}

	values := make([]float64, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if col >= cols/2-2 && col < cols/2 {
				values = append(values, meta.NoData)
				continue
			}
			base := float64(col) / float64(cols-1)
			noise := (rng.Float64() - 0.5) * 0.2
			values = append(values, clamp(base+noise, 0, 1))
		}
	}
	return raster.NewGrid(meta, values)
}

// drawPoints samples random in-bounds locations, keeping those whose
// susceptibility score the accept function approves. No-data cells are
// kept occasionally to exercise NaN filtering downstream.
func drawPoints(g *raster.Grid, count int, rng *rand.Rand, accept func(score float64) bool) []domain.Point {
	xmin, ymin, xmax, ymax := g.Bounds()
	points := make([]domain.Point, 0, count)
	for len(points) < count {
		p := domain.Point{
			X: xmin + rng.Float64()*(xmax-xmin),
			Y: ymin + rng.Float64()*(ymax-ymin),
		}
		score := g.SampleOne(p)
		if math.IsNaN(score) {
			// Roughly one in twenty no-data points survive.
			if rng.Intn(20) == 0 {
				points = append(points, p)
			}
			continue
		}
		if accept(score) {
			points = append(points, p)
		}
	}
	return points
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func writeASCIIGrid(path string, g *raster.Grid) error {
	var b strings.Builder
	fmt.Fprintf(&b, "ncols %d\n", g.Cols)
	fmt.Fprintf(&b, "nrows %d\n", g.Rows)
	fmt.Fprintf(&b, "xllcorner %g\n", g.XMin)
	fmt.Fprintf(&b, "yllcorner %g\n", g.YMin)
	fmt.Fprintf(&b, "cellsize %g\n", g.CellSize)
	fmt.Fprintf(&b, "NODATA_value %g\n", g.NoData)

	for row := 0; row < g.Rows; row++ {
		fields := make([]string, g.Cols)
		for col := 0; col < g.Cols; col++ {
			fields[col] = fmt.Sprintf("%.4f", g.Value(col, row))
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeGeoJSON(path string, points []domain.Point) error {
	type geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	type feature struct {
		Type     string   `json:"type"`
		Geometry geometry `json:"geometry"`
	}
	type crs struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	}
	type collection struct {
		Type     string    `json:"type"`
		CRS      crs       `json:"crs"`
		Features []feature `json:"features"`
	}

	fc := collection{Type: "FeatureCollection"}
	fc.CRS.Type = "name"
	fc.CRS.Properties.Name = mockCRS
	for _, p := range points {
		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: geometry{Type: "Point", Coordinates: []float64{p.X, p.Y}},
		})
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
