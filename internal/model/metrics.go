// Package model holds the shared value types exchanged between the
// estimation pipeline, the calibration store, and the report parser.
package model

// ContextMetrics is the usage object forwarded unchanged to collaborators.
// IsEstimate distinguishes locally computed approximations from metrics
// derived from an authoritative source.
type ContextMetrics struct {
	UsedPercentage      float64 `json:"used_percentage"`
	RemainingPercentage float64 `json:"remaining_percentage"`
	WindowSize          int     `json:"context_window_size"`
	TokenCount          int     `json:"total_input_tokens"`
	IsEstimate          bool    `json:"is_estimate"`
}
