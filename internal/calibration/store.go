// Package calibration persists per-session correction factors learned
// by comparing token estimates against ground-truth counts.
package calibration

import (
	"time"
)

// Factor clamp bounds. A ground-truth ratio outside this range says
// more about a broken estimate than about the session.
const (
	MinFactor = 0.5
	MaxFactor = 2.0
)

// recentWindow bounds the diagnostic average to factors updated within
// the last 24 hours.
const recentWindow = 24 * time.Hour

// Record is the calibration state for one session.
type Record struct {
	Factor       float64   `json:"factor,omitzero"`
	LastEstimate *int      `json:"last_estimate,omitempty"`
	LastActual   *int      `json:"last_actual,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
	EstimateTime time.Time `json:"estimate_time,omitzero"`
	CalibratedAt time.Time `json:"calibrated_at,omitzero"`
}

// Calibrated reports whether a factor has ever been set for the record.
// A zero Factor means "never calibrated", since stored factors are
// clamped to [MinFactor, MaxFactor].
func (r *Record) Calibrated() bool {
	return r.Factor >= MinFactor
}

// State is the full persisted store content: the session map plus the
// diagnostic cross-session average.
type State struct {
	Sessions map[string]*Record `json:"sessions"`
	// RecentAverageFactor is the unweighted mean of all factors
	// updated in the last 24 hours. Diagnostic only: it is never
	// applied to correct an estimate, because it mixes estimation
	// regimes across sessions and estimator versions.
	RecentAverageFactor float64 `json:"recent_average_factor"`
}

// NewState returns an empty State.
func NewState() State {
	return State{Sessions: make(map[string]*Record), RecentAverageFactor: 1.0}
}

// Backend loads and saves the full store state. Each Store operation is
// one load-modify-save cycle; the backend owns serialization against
// concurrent writers.
type Backend interface {
	Load() (State, error)
	Save(State) error
}

// Store implements the calibration operations over a Backend.
type Store struct {
	backend Backend
	now     func() time.Time
}

// NewStore returns a Store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

// GetFactor returns the session's correction factor, or 1.0 when the
// session has never been calibrated. It never substitutes the
// cross-session average.
func (s *Store) GetFactor(sessionID string) float64 {
	state := s.load()
	if rec, ok := state.Sessions[sessionID]; ok && rec.Calibrated() {
		return rec.Factor
	}
	return 1.0
}

// SetFactor clamps factor into [0.5, 2.0], stores it for the session,
// and recomputes the 24-hour diagnostic average.
func (s *Store) SetFactor(sessionID string, factor float64) {
	state := s.load()
	rec := ensure(&state, sessionID)

	rec.Factor = clamp(factor, MinFactor, MaxFactor)
	rec.UpdatedAt = s.now()

	state.RecentAverageFactor = s.recentAverage(state)
	s.save(state)
}

// GetLastEstimate returns the last recorded estimate for the session.
func (s *Store) GetLastEstimate(sessionID string) (tokens int, ok bool) {
	state := s.load()
	if rec, exists := state.Sessions[sessionID]; exists && rec.LastEstimate != nil {
		return *rec.LastEstimate, true
	}
	return 0, false
}

// SetLastEstimate records the latest estimate for the session, creating
// the session record if absent. The next CalibrateFromActual uses this
// value as its denominator.
func (s *Store) SetLastEstimate(sessionID string, tokens int) {
	state := s.load()
	rec := ensure(&state, sessionID)

	rec.LastEstimate = &tokens
	rec.EstimateTime = s.now()
	s.save(state)
}

// CalibrateFromActual turns a ground-truth token count into a persisted
// correction factor. Returns ok=false without touching the store when
// no positive prior estimate exists for the session.
func (s *Store) CalibrateFromActual(sessionID string, actualTokens int) (factor float64, ok bool) {
	state := s.load()
	rec, exists := state.Sessions[sessionID]
	if !exists || rec.LastEstimate == nil || *rec.LastEstimate <= 0 {
		return 0, false
	}

	factor = clamp(float64(actualTokens)/float64(*rec.LastEstimate), MinFactor, MaxFactor)

	now := s.now()
	rec.Factor = factor
	rec.UpdatedAt = now
	rec.LastActual = &actualTokens
	rec.CalibratedAt = now

	state.RecentAverageFactor = s.recentAverage(state)
	s.save(state)
	return factor, true
}

// ClearSession deletes the session's record entirely.
func (s *Store) ClearSession(sessionID string) {
	state := s.load()
	if _, exists := state.Sessions[sessionID]; !exists {
		return
	}
	delete(state.Sessions, sessionID)
	s.save(state)
}

// Stats summarizes the store for diagnostics.
type Stats struct {
	SessionCount        int
	CalibratedSessions  int
	RecentAverageFactor float64
}

// GetStats returns store-wide diagnostic counts.
func (s *Store) GetStats() Stats {
	state := s.load()
	st := Stats{
		SessionCount:        len(state.Sessions),
		RecentAverageFactor: state.RecentAverageFactor,
	}
	for _, rec := range state.Sessions {
		if rec.Calibrated() {
			st.CalibratedSessions++
		}
	}
	return st
}

// Sessions returns a copy of all records keyed by session id.
func (s *Store) Sessions() map[string]Record {
	state := s.load()
	out := make(map[string]Record, len(state.Sessions))
	for id, rec := range state.Sessions {
		out[id] = *rec
	}
	return out
}

// load degrades to an empty state on backend failure so a store that
// cannot read still produces a best-effort uncalibrated answer.
func (s *Store) load() State {
	state, err := s.backend.Load()
	if err != nil {
		return NewState()
	}
	if state.Sessions == nil {
		state.Sessions = make(map[string]*Record)
	}
	return state
}

// save failures are already reported by the backend; the in-memory
// result of the current call stands regardless.
func (s *Store) save(state State) {
	_ = s.backend.Save(state)
}

func (s *Store) recentAverage(state State) float64 {
	cutoff := s.now().Add(-recentWindow)
	var sum float64
	var n int
	for _, rec := range state.Sessions {
		if rec.Calibrated() && rec.UpdatedAt.After(cutoff) {
			sum += rec.Factor
			n++
		}
	}
	if n == 0 {
		return 1.0
	}
	return sum / float64(n)
}

func ensure(state *State, sessionID string) *Record {
	if rec, ok := state.Sessions[sessionID]; ok {
		return rec
	}
	rec := &Record{}
	state.Sessions[sessionID] = rec
	return rec
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
