package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
	"github.com/couchcryptid/flood-validation-service/internal/observability"
	"github.com/couchcryptid/flood-validation-service/internal/raster"
	"github.com/couchcryptid/flood-validation-service/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGrid builds a 6x1 strip with unit cells at origin, scores falling from
// west to east, and a no-data cell at column 4:
//
//	0.9 0.7 0.6 0.4 ND 0.1
func newTestGrid(crs string) *raster.Grid {
	return raster.NewGrid(raster.Grid{
		CRS:      crs,
		Cols:     6,
		Rows:     1,
		XMin:     0,
		YMin:     0,
		CellSize: 1,
		NoData:   -9999,
	}, []float64{0.9, 0.7, 0.6, 0.4, -9999, 0.1})
}

// cellCenter returns the point at the center of column col.
func cellCenter(col int) domain.Point {
	return domain.Point{X: float64(col) + 0.5, Y: 0.5}
}

type mapStore struct {
	grids map[string]*raster.Grid
}

func (s mapStore) Load(path string) (*raster.Grid, error) {
	g, ok := s.grids[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such grid", raster.ErrLoad, path)
	}
	return g, nil
}

type recordingPublisher struct {
	reports []domain.ValidationReport
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, report domain.ValidationReport) error {
	if p.err != nil {
		return p.err
	}
	p.reports = append(p.reports, report)
	return nil
}

func newTestValidator(store raster.Store, publisher Publisher) *Validator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, publisher, logger, observability.NewMetricsForTesting())
}

func TestValidate(t *testing.T) {
	store := mapStore{grids: map[string]*raster.Grid{
		"susceptibility.asc": newTestGrid("EPSG:32643"),
	}}

	floodPoints := vector.PointSet{
		CRS:    "EPSG:32643",
		Points: []domain.Point{cellCenter(0), cellCenter(1), cellCenter(2)},
	}
	nonFloodPoints := vector.PointSet{
		CRS:    "EPSG:32643",
		Points: []domain.Point{cellCenter(3), cellCenter(5)},
	}

	t.Run("successful run", func(t *testing.T) {
		publisher := &recordingPublisher{}
		v := newTestValidator(store, publisher)

		report, err := v.Validate(context.Background(), Request{
			RasterPath: "susceptibility.asc",
			Flood:      floodPoints,
			NonFlood:   nonFloodPoints,
		})

		require.NoError(t, err)
		// Flood scores {0.9, 0.7, 0.6} all exceed non-flood {0.4, 0.1}.
		assert.Equal(t, 1.0, report.AUC)
		assert.Equal(t, domain.ClassStats{Supplied: 3, Valid: 3, Dropped: 0}, report.Flood)
		assert.Equal(t, domain.ClassStats{Supplied: 2, Valid: 2, Dropped: 0}, report.NonFlood)
		assert.Equal(t, "EPSG:32643", report.RasterCRS)
		assert.NotEmpty(t, report.ID)
		assert.False(t, report.ComputedAt.IsZero())

		require.Len(t, publisher.reports, 1)
		assert.Equal(t, report.ID, publisher.reports[0].ID)
	})

	t.Run("missing raster path", func(t *testing.T) {
		v := newTestValidator(store, nil)

		_, err := v.Validate(context.Background(), Request{
			Flood:    floodPoints,
			NonFlood: nonFloodPoints,
		})
		assert.ErrorIs(t, err, domain.ErrMissingInput)
	})

	t.Run("unknown raster", func(t *testing.T) {
		v := newTestValidator(store, nil)

		_, err := v.Validate(context.Background(), Request{
			RasterPath: "absent.asc",
			Flood:      floodPoints,
			NonFlood:   nonFloodPoints,
		})
		assert.ErrorIs(t, err, raster.ErrLoad)
	})

	t.Run("crs mismatch", func(t *testing.T) {
		v := newTestValidator(store, nil)

		_, err := v.Validate(context.Background(), Request{
			RasterPath: "susceptibility.asc",
			Flood:      vector.PointSet{CRS: "EPSG:4326", Points: floodPoints.Points},
			NonFlood:   nonFloodPoints,
		})

		var crsErr *domain.CRSMismatchError
		require.ErrorAs(t, err, &crsErr)
		assert.Equal(t, "EPSG:4326", crsErr.PointCRS)
		assert.Equal(t, "EPSG:32643", crsErr.RasterCRS)
	})

	t.Run("all flood points on no-data cells", func(t *testing.T) {
		v := newTestValidator(store, nil)

		_, err := v.Validate(context.Background(), Request{
			RasterPath: "susceptibility.asc",
			Flood:      vector.PointSet{Points: []domain.Point{cellCenter(4), {X: -5, Y: 0.5}}},
			NonFlood:   nonFloodPoints,
		})

		var nde *domain.NoDataError
		require.ErrorAs(t, err, &nde)
		assert.Equal(t, domain.Positive, nde.Class)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("no points at all", func(t *testing.T) {
		v := newTestValidator(store, nil)

		_, err := v.Validate(context.Background(), Request{RasterPath: "susceptibility.asc"})
		assert.ErrorIs(t, err, domain.ErrEmptyDataset)
	})

	t.Run("publish failure does not fail the run", func(t *testing.T) {
		publisher := &recordingPublisher{err: errors.New("broker down")}
		v := newTestValidator(store, publisher)

		report, err := v.Validate(context.Background(), Request{
			RasterPath: "susceptibility.asc",
			Flood:      floodPoints,
			NonFlood:   nonFloodPoints,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, report.ID)
	})
}

func TestCheckReadiness(t *testing.T) {
	store := mapStore{grids: map[string]*raster.Grid{
		"susceptibility.asc": newTestGrid(""),
	}}
	v := newTestValidator(store, nil)

	require.Error(t, v.CheckReadiness(context.Background()))

	_, err := v.Validate(context.Background(), Request{
		RasterPath: "susceptibility.asc",
		Flood:      vector.PointSet{Points: []domain.Point{cellCenter(0)}},
		NonFlood:   vector.PointSet{Points: []domain.Point{cellCenter(5)}},
	})
	require.NoError(t, err)

	assert.NoError(t, v.CheckReadiness(context.Background()))
}

func TestEvaluate(t *testing.T) {
	t.Run("drops missing samples and keeps counts", func(t *testing.T) {
		grid := newTestGrid("EPSG:32643")

		flood := vector.PointSet{Points: []domain.Point{
			cellCenter(0), cellCenter(1), cellCenter(4), // third is no-data
		}}
		nonFlood := vector.PointSet{Points: []domain.Point{
			cellCenter(5), {X: 100, Y: 100}, // second is out of bounds
		}}

		report, err := Evaluate(grid, flood, nonFlood)
		require.NoError(t, err)

		assert.Equal(t, domain.ClassStats{Supplied: 3, Valid: 2, Dropped: 1}, report.Flood)
		assert.Equal(t, domain.ClassStats{Supplied: 2, Valid: 1, Dropped: 1}, report.NonFlood)
		assert.Equal(t, 1.0, report.AUC)
	})

	t.Run("skips crs check when either side is unknown", func(t *testing.T) {
		grid := newTestGrid("")
		flood := vector.PointSet{CRS: "EPSG:4326", Points: []domain.Point{cellCenter(0)}}
		nonFlood := vector.PointSet{Points: []domain.Point{cellCenter(5)}}

		_, err := Evaluate(grid, flood, nonFlood)
		assert.NoError(t, err)
	})

	t.Run("curve endpoints", func(t *testing.T) {
		grid := newTestGrid("")
		flood := vector.PointSet{Points: []domain.Point{cellCenter(0), cellCenter(2)}}
		nonFlood := vector.PointSet{Points: []domain.Point{cellCenter(1), cellCenter(5)}}

		report, err := Evaluate(grid, flood, nonFlood)
		require.NoError(t, err)

		points := report.Curve.Points
		require.NotEmpty(t, points)
		assert.Equal(t, 0.0, points[0].FPR)
		assert.Equal(t, 0.0, points[0].TPR)
		assert.Equal(t, 1.0, points[len(points)-1].FPR)
		assert.Equal(t, 1.0, points[len(points)-1].TPR)
	})
}
