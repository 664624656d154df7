package window

import "testing"

func TestWindowFor_ExactMatch(t *testing.T) {
	r := NewRegistry()
	if got := r.WindowFor("claude-3.5-sonnet"); got != 176_000 {
		t.Errorf("WindowFor(claude-3.5-sonnet) = %d, want 176000", got)
	}
	if got := r.WindowFor("gpt-4o"); got != 128_000 {
		t.Errorf("WindowFor(gpt-4o) = %d, want 128000", got)
	}
}

func TestWindowFor_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	if got := r.WindowFor("Claude-3.5-Sonnet"); got != 176_000 {
		t.Errorf("WindowFor(Claude-3.5-Sonnet) = %d, want 176000", got)
	}
}

func TestWindowFor_SubstringMatch(t *testing.T) {
	r := NewRegistry()

	exact := r.WindowFor("claude-3.5-sonnet")
	variant := r.WindowFor("fine-tuned-claude-3.5-sonnet-v2")
	if exact != variant {
		t.Errorf("variant window %d differs from exact %d", variant, exact)
	}

	if got := r.WindowFor("my-org/gpt-4o-2024-08-06"); got != 128_000 {
		t.Errorf("WindowFor(gpt-4o variant) = %d, want 128000", got)
	}
}

func TestWindowFor_LongestKeyWins(t *testing.T) {
	// "gpt-4-turbo-preview" contains both "gpt-4" and "gpt-4-turbo";
	// the more specific family must resolve.
	r := NewRegistry()
	if got := r.WindowFor("gpt-4-turbo-preview"); got != 128_000 {
		t.Errorf("WindowFor(gpt-4-turbo-preview) = %d, want 128000", got)
	}
}

func TestWindowFor_Default(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"", "totally-unknown-model"} {
		if got := r.WindowFor(name); got != DefaultWindow {
			t.Errorf("WindowFor(%q) = %d, want default %d", name, got, DefaultWindow)
		}
	}
}

func TestWindowFor_Overrides(t *testing.T) {
	r := NewRegistryWithOverrides(map[string]int{
		"Claude-4.5-Sonnet": 200_000,
		"house-model":       64_000,
	}, 100_000)

	if got := r.WindowFor("claude-4.5-sonnet"); got != 200_000 {
		t.Errorf("overridden window = %d, want 200000", got)
	}
	if got := r.WindowFor("house-model"); got != 64_000 {
		t.Errorf("added window = %d, want 64000", got)
	}
	if got := r.WindowFor("mystery"); got != 100_000 {
		t.Errorf("custom default = %d, want 100000", got)
	}
}
