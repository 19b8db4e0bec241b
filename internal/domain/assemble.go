package domain

// Assemble merges the sampled scores of both classes into a labeled dataset,
// dropping entries whose score is missing (NaN). This is the single
// normalization point for missing values; downstream code can assume every
// sample in the dataset is valid.
//
// Fails with ErrEmptyDataset when both inputs are empty, with
// InsufficientDataError when a class has no input scores, and with
// NoDataError when a class had scores but all of them were missing.
func Assemble(positive, negative []float64) (Dataset, error) {
	if len(positive) == 0 && len(negative) == 0 {
		return Dataset{}, ErrEmptyDataset
	}
	if len(positive) == 0 {
		return Dataset{}, &InsufficientDataError{Class: Positive}
	}
	if len(negative) == 0 {
		return Dataset{}, &InsufficientDataError{Class: Negative}
	}

	samples := make([]ScoredSample, 0, len(positive)+len(negative))
	var p, n int
	for _, score := range positive {
		s := ScoredSample{Label: Positive, Score: score}
		if s.Missing() {
			continue
		}
		samples = append(samples, s)
		p++
	}
	for _, score := range negative {
		s := ScoredSample{Label: Negative, Score: score}
		if s.Missing() {
			continue
		}
		samples = append(samples, s)
		n++
	}

	if p == 0 {
		return Dataset{}, &NoDataError{Class: Positive, Total: len(positive)}
	}
	if n == 0 {
		return Dataset{}, &NoDataError{Class: Negative, Total: len(negative)}
	}

	return Dataset{Samples: samples, Positives: p, Negatives: n}, nil
}
