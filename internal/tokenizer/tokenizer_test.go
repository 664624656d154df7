package tokenizer

import (
	"strings"
	"testing"
)

func TestEstimate_Empty(t *testing.T) {
	e := NewEstimator()
	if got := e.Estimate(""); got != 0 {
		t.Errorf("Estimate(\"\") = %d, want 0", got)
	}
}

func TestEstimate_Monotonic(t *testing.T) {
	e := NewEstimator()
	short := "The quick brown fox jumps over the lazy dog. "
	long := strings.Repeat(short, 50)

	shortCount := e.Estimate(short)
	longCount := e.Estimate(long)

	if shortCount <= 0 {
		t.Fatalf("Estimate(short) = %d, want > 0", shortCount)
	}
	if longCount <= shortCount {
		t.Errorf("Estimate(long) = %d, want > %d", longCount, shortCount)
	}
}

func TestEstimate_RoughDensity(t *testing.T) {
	// English prose runs around 4 chars/token; whatever path the
	// estimator takes, the result should land in a sane band.
	e := NewEstimator()
	text := strings.Repeat("context estimation with self calibration ", 100)

	got := e.Estimate(text)
	low := len(text) / 8
	high := len(text) / 2
	if got < low || got > high {
		t.Errorf("Estimate = %d, want within [%d, %d] for %d chars", got, low, high, len(text))
	}
}

func TestEstimate_EncoderReused(t *testing.T) {
	e := NewEstimator()
	first := e.Estimate("hello world")
	second := e.Estimate("hello world")
	if first != second {
		t.Errorf("repeated Estimate differs: %d vs %d", first, second)
	}
}

func TestThinkingMultiplier(t *testing.T) {
	tests := []struct {
		model string
		want  float64
	}{
		{"", 1.0},
		{"claude-4.5-sonnet", 1.0},
		{"claude-4.5-sonnet-thinking", 3.0},
		{"claude-4.5-opus-high-thinking", 5.0},
		{"gpt-5-max", 2.0},
		{"CLAUDE-4-OPUS-THINKING", 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := ThinkingMultiplier(tt.model); got != tt.want {
				t.Errorf("ThinkingMultiplier(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}
