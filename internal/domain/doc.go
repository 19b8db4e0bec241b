// Package domain models flood-susceptibility model validation against
// ground-truth point observations.
//
// # Method
//
// A susceptibility raster assigns every cell a continuous flood-proneness
// score. Validation samples that surface at two sets of surveyed points —
// locations where flooding was observed (positive class) and locations where
// it was not (negative class) — and measures how well the score separates the
// classes with a Receiver Operating Characteristic curve.
//
// Sweeping a threshold from the highest observed score to the lowest, each
// threshold classifies samples at-or-above it as "flood". The true positive
// rate (flooded points correctly above threshold) plotted against the false
// positive rate (dry points wrongly above threshold) traces the ROC curve;
// the area under it (AUC) is the probability that a randomly chosen flood
// point scores higher than a randomly chosen non-flood point.
//
//	AUC 1.0  perfect separation
//	AUC 0.5  non-informative model (the diagonal)
//
// # Tie handling
//
// Thresholds are placed only where the score value changes. Samples sharing
// a score form one tie group and move the curve point together; splitting a
// group would fabricate intermediate operating points that the classifier
// cannot actually realize. [PairwiseAUC] counts tied (positive, negative)
// pairs as one half for the same reason.
//
// # Missing values
//
// Points that fall outside the raster or on no-data cells sample as NaN.
// [Assemble] is the single place where NaN scores are dropped; a class left
// with no valid samples aborts the run with a typed error rather than
// producing a misleading AUC.
//
// All computations here are pure functions over immutable values: reports
// are derived per run, and concurrent runs share no mutable state.
package domain
