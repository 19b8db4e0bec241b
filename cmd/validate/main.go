// Command validate runs one flood-susceptibility validation from the command
// line: it samples a raster at flood and non-flood observation points,
// computes the ROC curve and AUC, and runs integrity cross-checks on the
// result (curve monotonicity, trapezoid vs pairwise AUC agreement, sampling
// coverage).
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raster data/susceptibility.asc \
//	  -flood data/flood_points.geojson \
//	  -nonflood data/nonflood_points.geojson \
//	  -json report.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
	"github.com/couchcryptid/flood-validation-service/internal/pipeline"
	"github.com/couchcryptid/flood-validation-service/internal/raster"
	"github.com/couchcryptid/flood-validation-service/internal/vector"
)

// aucTolerance bounds the allowed disagreement between the trapezoidal AUC
// and the Mann-Whitney pair-counting AUC. The two are mathematically equal;
// anything beyond float rounding indicates a broken curve.
const aucTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rasterPath := flag.String("raster", "", "path to the susceptibility raster (ESRI ASCII grid)")
	floodPath := flag.String("flood", "", "path to flood observation points (GeoJSON or CSV)")
	nonFloodPath := flag.String("nonflood", "", "path to non-flood observation points (GeoJSON or CSV)")
	jsonOut := flag.String("json", "", "optional path to write the report JSON")
	flag.Parse()

	if *rasterPath == "" || *floodPath == "" || *nonFloodPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rasterPath, *floodPath, *nonFloodPath, *jsonOut); code != 0 {
		os.Exit(code)
	}
}

func run(rasterPath, floodPath, nonFloodPath, jsonOut string) int {
	fmt.Println("=== Flood Susceptibility Model Validation ===")
	fmt.Println()

	grid, err := raster.LoadASCIIGrid(rasterPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raster: %v\n", err)
		return 1
	}
	flood, err := vector.LoadPoints(floodPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load flood points: %v\n", err)
		return 1
	}
	nonFlood, err := vector.LoadPoints(nonFloodPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load non-flood points: %v\n", err)
		return 1
	}

	fmt.Printf("Raster: %dx%d cells, CRS %q\n", grid.Cols, grid.Rows, grid.CRS)
	fmt.Printf("Points: %d flood, %d non-flood\n", len(flood.Points), len(nonFlood.Points))

	report, err := pipeline.Evaluate(grid, flood, nonFlood)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCoverage(report),
		validateCurve(report.Curve),
		validateAUCAgreement(grid, flood, nonFlood, report),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	printCurve(report)

	if jsonOut != "" {
		if err := writeReport(jsonOut, report); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: write report: %v\n", err)
			return 1
		}
		fmt.Printf("\nWrote report: %s\n", jsonOut)
	}

	if !allPassed {
		fmt.Println("\nValidation FAILED.")
		return 1
	}
	fmt.Printf("\nAUC = %.3f\n", report.AUC)
	return 0
}

// validateCoverage flags classes that lost samples to no-data cells.
func validateCoverage(report domain.ValidationReport) *phase {
	p := &phase{name: "sampling coverage"}
	for _, c := range []struct {
		name  string
		stats domain.ClassStats
	}{
		{"flood", report.Flood},
		{"non-flood", report.NonFlood},
	} {
		if c.stats.Valid == 0 {
			p.errorf("%s: no valid samples out of %d points", c.name, c.stats.Supplied)
			continue
		}
		if c.stats.Dropped > 0 {
			ratio := float64(c.stats.Dropped) / float64(c.stats.Supplied)
			if ratio > 0.5 {
				p.errorf("%s: %.0f%% of points fell on no-data cells (%d of %d)",
					c.name, ratio*100, c.stats.Dropped, c.stats.Supplied)
			}
		}
	}
	return p
}

// validateCurve checks the structural ROC invariants: bounded monotone
// rates and (0,0) / (1,1) endpoints.
func validateCurve(curve domain.RocCurve) *phase {
	p := &phase{name: "ROC curve integrity"}

	if len(curve.Points) < 2 {
		p.errorf("curve has %d points, need at least 2", len(curve.Points))
		return p
	}

	first, last := curve.Points[0], curve.Points[len(curve.Points)-1]
	if first.FPR != 0 || first.TPR != 0 {
		p.errorf("curve starts at (%g, %g), want (0, 0)", first.FPR, first.TPR)
	}
	if last.FPR != 1 || last.TPR != 1 {
		p.errorf("curve ends at (%g, %g), want (1, 1)", last.FPR, last.TPR)
	}

	for i := 1; i < len(curve.Points); i++ {
		prev, cur := curve.Points[i-1], curve.Points[i]
		if cur.FPR < prev.FPR || cur.TPR < prev.TPR {
			p.errorf("point %d: rates decreased (%g,%g) -> (%g,%g)", i, prev.FPR, prev.TPR, cur.FPR, cur.TPR)
		}
		if cur.FPR < 0 || cur.FPR > 1 || cur.TPR < 0 || cur.TPR > 1 {
			p.errorf("point %d: rates out of [0,1]: (%g, %g)", i, cur.FPR, cur.TPR)
		}
		if cur.Threshold >= prev.Threshold {
			p.errorf("point %d: thresholds not strictly decreasing: %g >= %g", i, cur.Threshold, prev.Threshold)
		}
	}

	if curve.AUC < 0 || curve.AUC > 1 {
		p.errorf("AUC %g out of [0,1]", curve.AUC)
	}
	return p
}

// validateAUCAgreement recomputes the AUC by pair counting and compares it
// with the trapezoidal result from the curve.
func validateAUCAgreement(grid *raster.Grid, flood, nonFlood vector.PointSet, report domain.ValidationReport) *phase {
	p := &phase{name: "AUC cross-check (trapezoid vs pairwise)"}

	ds, err := domain.Assemble(grid.Sample(flood.Points), grid.Sample(nonFlood.Points))
	if err != nil {
		p.errorf("reassemble dataset: %v", err)
		return p
	}
	pairwise, err := domain.PairwiseAUC(ds)
	if err != nil {
		p.errorf("pairwise auc: %v", err)
		return p
	}

	if diff := math.Abs(pairwise - report.AUC); diff > aucTolerance {
		p.errorf("trapezoid AUC %.12f and pairwise AUC %.12f differ by %g", report.AUC, pairwise, diff)
	}
	return p
}

func printCurve(report domain.ValidationReport) {
	fmt.Println()
	fmt.Printf("  %-12s %-8s %-8s\n", "threshold", "fpr", "tpr")
	for _, pt := range report.Curve.Points {
		threshold := "inf"
		if !math.IsInf(pt.Threshold, 0) {
			threshold = fmt.Sprintf("%.4f", pt.Threshold)
		}
		fmt.Printf("  %-12s %-8.4f %-8.4f\n", threshold, pt.FPR, pt.TPR)
	}
}

func writeReport(path string, report domain.ValidationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
