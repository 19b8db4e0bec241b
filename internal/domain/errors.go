package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput signals that the raster or one of the point sets was
	// not supplied. The caller should be asked for all required inputs.
	ErrMissingInput = errors.New("missing required input")

	// ErrEmptyDataset signals that both point sets were empty.
	ErrEmptyDataset = errors.New("both point sets are empty")

	// ErrInsufficientData signals that a class ended up with zero valid
	// samples, leaving the ROC curve undefined. InsufficientDataError and
	// NoDataError both unwrap to this sentinel.
	ErrInsufficientData = errors.New("insufficient data for ROC analysis")
)

// InsufficientDataError reports a class that had no input scores at all.
type InsufficientDataError struct {
	Class Label
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no %s samples supplied: %v", e.Class, ErrInsufficientData)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// NoDataError reports a class whose points were all sampled on no-data or
// out-of-bounds raster cells: scores existed but none were valid.
type NoDataError struct {
	Class Label
	Total int // input scores before filtering
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("all %d %s samples fell on no-data cells: %v", e.Total, e.Class, ErrInsufficientData)
}

func (e *NoDataError) Unwrap() error { return ErrInsufficientData }

// CRSMismatchError reports point coordinates expressed in a different
// coordinate reference system than the raster. Reprojection is an upstream
// responsibility; the pipeline refuses to sample rather than produce a
// garbage AUC.
type CRSMismatchError struct {
	PointCRS  string
	RasterCRS string
}

func (e *CRSMismatchError) Error() string {
	return fmt.Sprintf("point CRS %q does not match raster CRS %q", e.PointCRS, e.RasterCRS)
}
