// Package window maps model identifiers to usable context-window sizes.
package window

import "strings"

// DefaultWindow is the window assumed for empty or unrecognized model
// names. It is the smallest commonly-seen agent-context limit across
// supported tools, so an unknown model is assumed to have less room,
// not more.
const DefaultWindow = 176_000

// defaultWindows maps known model identifiers (lowercase) to their
// context-window sizes in tokens, grouped by provider family.
var defaultWindows = map[string]int{
	// Anthropic (agent-mode limit observed in editor tooling)
	"claude-4.5-opus":   176_000,
	"claude-4.5-sonnet": 176_000,
	"claude-4-opus":     176_000,
	"claude-4-sonnet":   176_000,
	"claude-3.5-sonnet": 176_000,
	"claude-3-opus":     176_000,
	"claude-3-sonnet":   176_000,
	"claude-3-haiku":    176_000,

	// OpenAI
	"gpt-4o":        128_000,
	"gpt-4-turbo":   128_000,
	"gpt-4":         8_192,
	"gpt-3.5-turbo": 16_385,

	// Google
	"gemini-2.5-pro":   1_000_000,
	"gemini-2.5-flash": 1_000_000,
	"gemini-1.5-pro":   2_000_000,
	"gemini-1.5-flash": 1_000_000,
}

// Registry resolves model names to context-window sizes.
type Registry struct {
	windows       map[string]int
	defaultWindow int
}

// NewRegistry returns a Registry with the built-in model table.
func NewRegistry() *Registry {
	return &Registry{windows: defaultWindows, defaultWindow: DefaultWindow}
}

// NewRegistryWithOverrides returns a Registry whose table is extended
// (or overridden) by the given entries. A positive defaultWindow
// replaces the built-in default.
func NewRegistryWithOverrides(overrides map[string]int, defaultWindow int) *Registry {
	windows := make(map[string]int, len(defaultWindows)+len(overrides))
	for k, v := range defaultWindows {
		windows[k] = v
	}
	for k, v := range overrides {
		if v > 0 {
			windows[strings.ToLower(k)] = v
		}
	}
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindow
	}
	return &Registry{windows: windows, defaultWindow: defaultWindow}
}

// WindowFor returns the context window for a model name. Lookup is
// case-insensitive: exact match first, then any known key appearing as
// a substring of the supplied name (so dated or fine-tuned variants of
// a known family still resolve), then the default.
func (r *Registry) WindowFor(model string) int {
	if model == "" {
		return r.defaultWindow
	}

	lower := strings.ToLower(model)
	if w, ok := r.windows[lower]; ok {
		return w
	}

	// Longest key wins so "gpt-4-turbo" is preferred over "gpt-4"
	// inside a name containing both.
	best := 0
	bestLen := 0
	for key, w := range r.windows {
		if strings.Contains(lower, key) && len(key) > bestLen {
			best = w
			bestLen = len(key)
		}
	}
	if bestLen > 0 {
		return best
	}

	return r.defaultWindow
}
