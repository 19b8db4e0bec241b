package domain

import (
	"encoding/json"
	"math"
)

// Point is a planar coordinate in the raster's coordinate reference system.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label classifies a ground-truth observation.
type Label int

const (
	// Negative marks a non-flood observation.
	Negative Label = iota
	// Positive marks a flood observation.
	Positive
)

// String returns the lowercase class name used in logs, metrics, and errors.
func (l Label) String() string {
	if l == Positive {
		return "positive"
	}
	return "negative"
}

// ScoredSample pairs a class label with the susceptibility score sampled at
// an observation point. A NaN score means the raster had no data there.
type ScoredSample struct {
	Label Label
	Score float64
}

// Missing reports whether the sample carries no valid score.
func (s ScoredSample) Missing() bool {
	return math.IsNaN(s.Score)
}

// Dataset is the labeled score dataset after missing-value filtering.
// Invariant: Positives > 0 and Negatives > 0 (enforced by Assemble),
// otherwise a ROC curve is undefined.
type Dataset struct {
	Samples   []ScoredSample
	Positives int
	Negatives int
}

// RocPoint is one point of a ROC curve: the score threshold and the
// false/true positive rates of the classifier at that threshold.
type RocPoint struct {
	Threshold float64 `json:"threshold"`
	FPR       float64 `json:"fpr"`
	TPR       float64 `json:"tpr"`
}

// rocPointJSON is the wire form of RocPoint. The curve's (0,0) anchor has an
// infinite threshold, which JSON cannot carry; it is encoded as an absent
// threshold instead.
type rocPointJSON struct {
	Threshold *float64 `json:"threshold,omitempty"`
	FPR       float64  `json:"fpr"`
	TPR       float64  `json:"tpr"`
}

func (p RocPoint) MarshalJSON() ([]byte, error) {
	wire := rocPointJSON{FPR: p.FPR, TPR: p.TPR}
	if !math.IsInf(p.Threshold, 0) {
		t := p.Threshold
		wire.Threshold = &t
	}
	return json.Marshal(wire)
}

func (p *RocPoint) UnmarshalJSON(data []byte) error {
	var wire rocPointJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.FPR = wire.FPR
	p.TPR = wire.TPR
	if wire.Threshold != nil {
		p.Threshold = *wire.Threshold
	} else {
		p.Threshold = math.Inf(1)
	}
	return nil
}

// RocCurve is the ordered ROC polyline from (0,0) to (1,1) plus its area
// under curve. FPR and TPR are non-decreasing in index; thresholds decrease
// from +Inf at the first point.
type RocCurve struct {
	Points []RocPoint `json:"points"`
	AUC    float64    `json:"auc"`
}
