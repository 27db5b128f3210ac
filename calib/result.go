package calib

// Step records one refit iteration.
type Step struct {
	Iteration    int     // 1-based refit number
	Speed        int     // speed used for this round's discard
	DiscardLimit float64 // Speed * Threshold
	// Discarded holds the original input indices removed this round.
	Discarded        []int
	Retained         int
	Slope            float64
	Intercept        float64
	MaxRelativeError float64
}

// Result is the outcome of a calibration run.
type Result struct {
	Slope     float64
	Intercept float64

	// OriginalUp and OriginalDown are the full inputs, with down already
	// divided by the standard.
	OriginalUp   []float64
	OriginalDown []float64

	// RetainedUp and RetainedDown are the surviving pairs, in input order.
	// RetainedIndex[i] is the input index of pair i.
	RetainedUp    []float64
	RetainedDown  []float64
	RetainedIndex []int

	// Fitted holds Slope*RetainedUp[i] + Intercept.
	Fitted []float64
	// RelativeError holds the final relative error of every retained pair.
	RelativeError    []float64
	MaxRelativeError float64

	IterationsRun int
	Converged     bool
	Steps         []Step
}

// Discarded returns the input indices that did not survive, in input order.
func (r Result) Discarded() []int {
	out := make([]int, 0, len(r.OriginalUp)-len(r.RetainedIndex))
	next := 0
	for i := range r.OriginalUp {
		if next < len(r.RetainedIndex) && r.RetainedIndex[next] == i {
			next++
			continue
		}
		out = append(out, i)
	}
	return out
}

// RetentionRatio returns the fraction of input pairs that survived.
func (r Result) RetentionRatio() float64 {
	if len(r.OriginalUp) == 0 {
		return 0
	}
	return float64(len(r.RetainedIndex)) / float64(len(r.OriginalUp))
}
