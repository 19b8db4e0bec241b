// Package pipeline orchestrates one validation run: sample the raster at
// both point sets, assemble the labeled dataset, compute the ROC curve, and
// stamp a report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
	"github.com/couchcryptid/flood-validation-service/internal/observability"
	"github.com/couchcryptid/flood-validation-service/internal/raster"
	"github.com/couchcryptid/flood-validation-service/internal/vector"
)

// Request carries the inputs of one validation run.
type Request struct {
	RasterPath string
	Flood      vector.PointSet
	NonFlood   vector.PointSet
}

// Publisher delivers completed reports to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, report domain.ValidationReport) error
}

// Validator runs validation requests against rasters loaded from a store.
// Each run is independent; Validate is safe for concurrent use.
type Validator struct {
	store     raster.Store
	publisher Publisher // optional
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Validator. Pass a nil publisher to disable report publishing.
func New(store raster.Store, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Validator {
	return &Validator{
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the validator has completed at least one
// run, or an error describing why the service is not yet ready.
func (v *Validator) CheckReadiness(_ context.Context) error {
	if !v.ready.Load() {
		return errors.New("no validation run has completed yet")
	}
	return nil
}

// Validate executes one full run and returns the stamped report. On any
// failure no report is returned; a partial AUC is never exposed.
func (v *Validator) Validate(ctx context.Context, req Request) (domain.ValidationReport, error) {
	start := time.Now()

	report, err := v.validate(req)
	if err != nil {
		v.metrics.ValidationsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return domain.ValidationReport{}, err
	}

	v.metrics.ValidationsTotal.WithLabelValues("success").Inc()
	v.metrics.ValidationDuration.Observe(time.Since(start).Seconds())
	v.metrics.AUCValue.Observe(report.AUC)
	v.metrics.DroppedSamples.WithLabelValues(domain.Positive.String()).Add(float64(report.Flood.Dropped))
	v.metrics.DroppedSamples.WithLabelValues(domain.Negative.String()).Add(float64(report.NonFlood.Dropped))
	v.ready.Store(true)
	v.metrics.ServiceReady.Set(1)

	v.logger.Info("validation completed",
		"report_id", report.ID,
		"auc", report.AUC,
		"flood_valid", report.Flood.Valid,
		"non_flood_valid", report.NonFlood.Valid,
		"duration", time.Since(start),
	)

	v.publish(ctx, report)
	return report, nil
}

func (v *Validator) validate(req Request) (domain.ValidationReport, error) {
	if req.RasterPath == "" {
		return domain.ValidationReport{}, fmt.Errorf("raster: %w", domain.ErrMissingInput)
	}

	grid, err := v.store.Load(req.RasterPath)
	if err != nil {
		return domain.ValidationReport{}, fmt.Errorf("load raster: %w", err)
	}

	report, err := Evaluate(grid, req.Flood, req.NonFlood)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	v.metrics.SamplesExtracted.Add(float64(report.Flood.Supplied + report.NonFlood.Supplied))
	return report, nil
}

// publish sends the report to the sink if a publisher is configured.
// Publishing is best-effort: the report is already computed and returned to
// the caller, so a sink outage only logs and counts.
func (v *Validator) publish(ctx context.Context, report domain.ValidationReport) {
	if v.publisher == nil {
		return
	}
	if err := v.publisher.Publish(ctx, report); err != nil {
		v.logger.Warn("report publish failed", "report_id", report.ID, "error", err)
	}
}

// Evaluate is the pure entry point shared by the service and the CLI:
// sample the grid at both point sets, assemble, compute, and stamp a report.
// Deterministic given identical inputs apart from the report ID and
// timestamp; no hidden state.
func Evaluate(grid *raster.Grid, flood, nonFlood vector.PointSet) (domain.ValidationReport, error) {
	if err := checkCRS(grid, flood); err != nil {
		return domain.ValidationReport{}, err
	}
	if err := checkCRS(grid, nonFlood); err != nil {
		return domain.ValidationReport{}, err
	}

	floodScores := grid.Sample(flood.Points)
	nonFloodScores := grid.Sample(nonFlood.Points)

	ds, err := domain.Assemble(floodScores, nonFloodScores)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	curve, err := domain.ComputeROC(ds)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	return domain.NewReport(curve, grid.CRS,
		domain.ClassStats{
			Supplied: len(flood.Points),
			Valid:    ds.Positives,
			Dropped:  len(flood.Points) - ds.Positives,
		},
		domain.ClassStats{
			Supplied: len(nonFlood.Points),
			Valid:    ds.Negatives,
			Dropped:  len(nonFlood.Points) - ds.Negatives,
		},
	), nil
}

// checkCRS rejects point sets whose declared CRS differs from the raster's.
// Reprojection happens upstream; when either side does not declare a CRS the
// check is skipped rather than guessed.
func checkCRS(grid *raster.Grid, set vector.PointSet) error {
	if grid.CRS == "" || set.CRS == "" {
		return nil
	}
	if grid.CRS != set.CRS {
		return &domain.CRSMismatchError{PointCRS: set.CRS, RasterCRS: grid.CRS}
	}
	return nil
}

// outcomeLabel maps a validation failure to its metrics label.
func outcomeLabel(err error) string {
	var crsErr *domain.CRSMismatchError
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return "missing_input"
	case errors.As(err, &crsErr):
		return "crs_mismatch"
	case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrEmptyDataset):
		return "insufficient_data"
	case errors.Is(err, raster.ErrLoad):
		return "raster_error"
	default:
		return "error"
	}
}
