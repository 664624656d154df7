// Package pipeline orchestrates estimation and calibration: it turns a
// normalized hook event into the context metrics forwarded to
// collaborators, and feeds ground-truth observations back into the
// calibration store.
package pipeline

import (
	"github.com/gregory-lime/jacques-context-manager/internal/calibration"
	"github.com/gregory-lime/jacques-context-manager/internal/meter"
	"github.com/gregory-lime/jacques-context-manager/internal/model"
	"github.com/gregory-lime/jacques-context-manager/internal/report"
	"github.com/gregory-lime/jacques-context-manager/internal/skills"
	"github.com/gregory-lime/jacques-context-manager/internal/tokenizer"
	"github.com/gregory-lime/jacques-context-manager/internal/window"
)

// Engine owns one instance of every estimation component. Each hook
// firing builds an Engine, runs a single request through it, and exits;
// the calibration store is the only state shared across firings.
type Engine struct {
	estimator *tokenizer.Estimator
	registry  *window.Registry
	scanner   *skills.Scanner
	store     *calibration.Store
}

// NewEngine wires an Engine from its components.
func NewEngine(estimator *tokenizer.Estimator, registry *window.Registry, scanner *skills.Scanner, store *calibration.Store) *Engine {
	return &Engine{
		estimator: estimator,
		registry:  registry,
		scanner:   scanner,
		store:     store,
	}
}

// EstimateRequest is a normalized estimation event. Transcript is the
// full conversation text as captured by the hook.
type EstimateRequest struct {
	SessionID  string
	Model      string
	Transcript string
}

// Estimate runs the full estimation path: raw transcript count,
// thinking-mode inflation, skill and system-prompt overhead, the
// session's learned correction factor, then percentages against the
// model's window. The result is recorded as the session's last
// estimate so the next ground-truth observation has a denominator.
// Returns ok=false for an empty transcript: no output, not an error.
func (e *Engine) Estimate(req EstimateRequest) (model.ContextMetrics, bool) {
	if req.Transcript == "" {
		return model.ContextMetrics{}, false
	}

	tokens := e.estimator.Estimate(req.Transcript)
	tokens = int(float64(tokens) * tokenizer.ThinkingMultiplier(req.Model))

	_, overhead := e.scanner.Overhead()
	tokens += overhead

	if req.SessionID != "" {
		tokens = int(float64(tokens) * e.store.GetFactor(req.SessionID))
		e.store.SetLastEstimate(req.SessionID, tokens)
	}

	m := meter.Compute(tokens, e.registry.WindowFor(req.Model))
	return model.ContextMetrics{
		UsedPercentage:      m.UsedPercentage,
		RemainingPercentage: m.RemainingPercentage,
		WindowSize:          m.Window,
		TokenCount:          m.Tokens,
		IsEstimate:          true,
	}, true
}

// CalibrateRequest is a normalized ground-truth event: an authoritative
// token count, optionally with the window the tool reported.
type CalibrateRequest struct {
	SessionID    string
	Model        string
	ActualTokens int
	WindowSize   int
}

// Calibrate folds an authoritative count into the session's correction
// factor and returns metrics derived from the actual values
// (IsEstimate=false). The factor update is skipped, not failed, when
// the session has no prior estimate to correct against or when the
// count is not positive. A zero count is a degenerate observation and
// must never become a stored correction.
func (e *Engine) Calibrate(req CalibrateRequest) model.ContextMetrics {
	if req.SessionID != "" && req.ActualTokens > 0 {
		e.store.CalibrateFromActual(req.SessionID, req.ActualTokens)
	}

	win := req.WindowSize
	if win <= 0 {
		win = e.registry.WindowFor(req.Model)
	}

	m := meter.Compute(req.ActualTokens, win)
	return model.ContextMetrics{
		UsedPercentage:      m.UsedPercentage,
		RemainingPercentage: m.RemainingPercentage,
		WindowSize:          m.Window,
		TokenCount:          m.Tokens,
		IsEstimate:          false,
	}
}

// CalibrateFromReport extracts ground truth from captured usage-report
// text and calibrates from its total. Returns the parsed breakdown and
// the derived metrics; ok=false when no report is present in the text.
func (e *Engine) CalibrateFromReport(sessionID, raw string) (*model.ContextBreakdown, model.ContextMetrics, bool) {
	block, found := report.FindReport(raw)
	if !found {
		block = raw
	}

	breakdown, ok := report.Parse(block)
	if !ok {
		return nil, model.ContextMetrics{}, false
	}

	metrics := e.Calibrate(CalibrateRequest{
		SessionID:    sessionID,
		Model:        breakdown.Model,
		ActualTokens: breakdown.TotalTokens,
		WindowSize:   breakdown.MaxTokens,
	})
	return breakdown, metrics, true
}

// ClearSession drops the session's calibration record when the owning
// session ends.
func (e *Engine) ClearSession(sessionID string) {
	e.store.ClearSession(sessionID)
}
