package domain

import (
	"fmt"
	"math"
	"sort"
)

// ComputeROC derives the ROC curve and its AUC from a labeled dataset.
//
// Samples are sorted by score descending and walked once, accumulating the
// positives and negatives seen at or above the current threshold. A curve
// point is emitted only after each distinct score value: tied samples always
// contribute to the same point, never to separate thresholds. The curve is
// anchored at (+Inf, 0, 0); the final score group necessarily lands on
// (1, 1). The AUC is the trapezoidal area under the (fpr, tpr) polyline.
//
// The function is pure and deterministic: identical datasets produce
// bit-identical curves.
func ComputeROC(ds Dataset) (RocCurve, error) {
	if ds.Positives == 0 || ds.Negatives == 0 {
		return RocCurve{}, fmt.Errorf("compute roc: P=%d N=%d: %w", ds.Positives, ds.Negatives, ErrInsufficientData)
	}

	sorted := make([]ScoredSample, len(ds.Samples))
	copy(sorted, ds.Samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	p := float64(ds.Positives)
	n := float64(ds.Negatives)

	points := make([]RocPoint, 0, len(sorted)+1)
	points = append(points, RocPoint{Threshold: math.Inf(1), FPR: 0, TPR: 0})

	var tp, fp int
	for i, s := range sorted {
		if s.Label == Positive {
			tp++
		} else {
			fp++
		}
		// Close the tie group only once the score changes (or at the end).
		if i+1 < len(sorted) && sorted[i+1].Score == s.Score {
			continue
		}
		points = append(points, RocPoint{
			Threshold: s.Score,
			FPR:       float64(fp) / n,
			TPR:       float64(tp) / p,
		})
	}

	return RocCurve{Points: points, AUC: trapezoidArea(points)}, nil
}

// trapezoidArea integrates tpr over fpr. FPR is non-decreasing by
// construction, so every trapezoid has non-negative width.
func trapezoidArea(points []RocPoint) float64 {
	var area float64
	for i := 1; i < len(points); i++ {
		width := points[i].FPR - points[i-1].FPR
		area += width * (points[i].TPR + points[i-1].TPR) / 2
	}
	return area
}

// PairwiseAUC computes the AUC by the Mann-Whitney pair-counting formula:
// the fraction of (positive, negative) pairs where the positive scores
// higher, counting ties as half. It is O(P*N) and exists as an independent
// cross-check of the trapezoidal AUC; the two must agree to within
// floating-point tolerance on any valid dataset.
func PairwiseAUC(ds Dataset) (float64, error) {
	if ds.Positives == 0 || ds.Negatives == 0 {
		return 0, fmt.Errorf("pairwise auc: P=%d N=%d: %w", ds.Positives, ds.Negatives, ErrInsufficientData)
	}

	var concordant, ties float64
	for _, a := range ds.Samples {
		if a.Label != Positive {
			continue
		}
		for _, b := range ds.Samples {
			if b.Label != Negative {
				continue
			}
			switch {
			case a.Score > b.Score:
				concordant++
			case a.Score == b.Score:
				ties++
			}
		}
	}

	pairs := float64(ds.Positives) * float64(ds.Negatives)
	return (concordant + 0.5*ties) / pairs, nil
}
