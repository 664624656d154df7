package tokenizer

import "strings"

// thinkingMultipliers maps model-name markers to context inflation
// factors. Extended-thinking models carry internal reasoning that never
// appears in the transcript but is counted against the context window.
// The high-thinking value comes from observed calibration around 5.7x.
// Order matters: more specific markers are checked first.
var thinkingMultipliers = []struct {
	marker     string
	multiplier float64
}{
	{"high-thinking", 5.0},
	{"thinking", 3.0},
	{"max", 2.0},
}

// ThinkingMultiplier returns the transcript-token multiplier for a
// model name, or 1.0 for models without an extended-reasoning marker.
func ThinkingMultiplier(model string) float64 {
	if model == "" {
		return 1.0
	}
	lower := strings.ToLower(model)
	for _, tm := range thinkingMultipliers {
		if strings.Contains(lower, tm.marker) {
			return tm.multiplier
		}
	}
	return 1.0
}
