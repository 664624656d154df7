package meter

import (
	"math"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name          string
		tokens        int
		window        int
		wantUsed      float64
		wantRemaining float64
	}{
		{"quarter", 50_000, 200_000, 25.0, 75.0},
		{"overflow capped", 250_000, 200_000, 100.0, 0.0},
		{"zero window", 50_000, 0, 0.0, 100.0},
		{"empty", 0, 200_000, 0.0, 100.0},
		{"rounding", 1, 3, 33.3, 66.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.tokens, tt.window)
			if m.UsedPercentage != tt.wantUsed {
				t.Errorf("UsedPercentage = %v, want %v", m.UsedPercentage, tt.wantUsed)
			}
			if m.RemainingPercentage != tt.wantRemaining {
				t.Errorf("RemainingPercentage = %v, want %v", m.RemainingPercentage, tt.wantRemaining)
			}
			if m.Tokens != tt.tokens || m.Window != tt.window {
				t.Errorf("echo fields = (%d, %d), want (%d, %d)", m.Tokens, m.Window, tt.tokens, tt.window)
			}
		})
	}
}

func TestCompute_SumNearHundred(t *testing.T) {
	// Independent rounding may drift the sum by up to 0.1 at interior
	// values, never more.
	for tokens := 0; tokens <= 200_000; tokens += 7919 {
		m := Compute(tokens, 200_000)
		sum := m.UsedPercentage + m.RemainingPercentage
		if math.Abs(sum-100.0) > 0.1+1e-9 {
			t.Fatalf("tokens=%d: used+remaining = %v, want within 0.1 of 100", tokens, sum)
		}
	}
}

func TestCompute_BoundariesSumExact(t *testing.T) {
	for _, m := range []Metrics{Compute(0, 200_000), Compute(200_000, 200_000), Compute(300_000, 200_000)} {
		if m.UsedPercentage+m.RemainingPercentage != 100.0 {
			t.Errorf("boundary sum = %v, want exactly 100.0", m.UsedPercentage+m.RemainingPercentage)
		}
	}
}
