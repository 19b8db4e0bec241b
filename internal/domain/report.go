package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClassStats summarizes one class of a validation run: how many points were
// supplied, how many produced a valid score, and how many fell on no-data or
// out-of-bounds cells.
type ClassStats struct {
	Supplied int `json:"supplied"`
	Valid    int `json:"valid"`
	Dropped  int `json:"dropped"`
}

// ValidationReport is the result of one model-validation run. Reports are
// values: derived once per run, never mutated, never shared across runs.
type ValidationReport struct {
	ID         string     `json:"id"`
	RasterCRS  string     `json:"raster_crs,omitempty"`
	AUC        float64    `json:"auc"`
	Curve      RocCurve   `json:"curve"`
	Flood      ClassStats `json:"flood"`
	NonFlood   ClassStats `json:"non_flood"`
	ComputedAt time.Time  `json:"computed_at"`
}

// NewReport assembles a stamped report from a computed curve and the
// per-class sample bookkeeping. The ID is a fresh UUID; ComputedAt comes
// from the package clock so fixtures can pin it.
func NewReport(curve RocCurve, rasterCRS string, flood, nonFlood ClassStats) ValidationReport {
	return ValidationReport{
		ID:         uuid.NewString(),
		RasterCRS:  rasterCRS,
		AUC:        curve.AUC,
		Curve:      curve,
		Flood:      flood,
		NonFlood:   nonFlood,
		ComputedAt: clock.Now().UTC(),
	}
}
