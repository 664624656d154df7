// Package meter converts token counts into context usage percentages.
package meter

import "math"

// Metrics is the percentage view of a token count against a window.
type Metrics struct {
	UsedPercentage      float64
	RemainingPercentage float64
	Window              int
	Tokens              int
}

// Compute returns usage metrics for tokens against a context window.
// A non-positive window yields 0% used. Percentages are rounded to one
// decimal only at the boundary; the ratio itself is never rounded, so
// the two values sum to exactly 100.0 at 0 and 100 and drift by at most
// 0.1 in between.
func Compute(tokens, window int) Metrics {
	var used float64
	if window > 0 {
		used = math.Min(100, float64(tokens)/float64(window)*100)
	}

	return Metrics{
		UsedPercentage:      round1(used),
		RemainingPercentage: round1(100 - used),
		Window:              window,
		Tokens:              tokens,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
