package calibration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// newTestStore returns a Store over a file backend in a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.json")
	return NewStore(NewFileBackend(path))
}

func TestGetFactor_Default(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetFactor("never-seen"); got != 1.0 {
		t.Errorf("GetFactor = %v, want 1.0", got)
	}
}

func TestGetFactor_IgnoresOtherSessions(t *testing.T) {
	// A calibrated neighbor must not leak into a fresh session; the
	// cross-session average is diagnostic only.
	s := newTestStore(t)
	s.SetFactor("neighbor-a", 1.5)
	s.SetFactor("neighbor-b", 2.0)

	if got := s.GetFactor("fresh"); got != 1.0 {
		t.Errorf("GetFactor(fresh) = %v, want 1.0 despite calibrated neighbors", got)
	}

	stats := s.GetStats()
	if stats.RecentAverageFactor != 1.75 {
		t.Errorf("RecentAverageFactor = %v, want 1.75", stats.RecentAverageFactor)
	}
}

func TestRecord_Calibrated(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   bool
	}{
		{"never set", 0, false},
		{"minimum", MinFactor, true},
		{"typical", 1.3, true},
		{"maximum", MaxFactor, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{Factor: tt.factor}
			if got := rec.Calibrated(); got != tt.want {
				t.Errorf("Calibrated with factor %v = %v, want %v", tt.factor, got, tt.want)
			}
		})
	}
}

func TestSetFactor_Clamp(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"below range", 0.1, 0.5},
		{"lower bound", 0.5, 0.5},
		{"in range", 1.1, 1.1},
		{"upper bound", 2.0, 2.0},
		{"above range", 5.68, 2.0},
		{"negative", -3.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			s.SetFactor("sess", tt.factor)
			if got := s.GetFactor("sess"); got != tt.want {
				t.Errorf("stored factor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLastEstimate_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.GetLastEstimate("sess"); ok {
		t.Error("GetLastEstimate on fresh session should report absent")
	}

	s.SetLastEstimate("sess", 50_000)
	got, ok := s.GetLastEstimate("sess")
	if !ok || got != 50_000 {
		t.Errorf("GetLastEstimate = (%d, %v), want (50000, true)", got, ok)
	}
}

func TestCalibrateFromActual_NoPriorEstimate(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.CalibrateFromActual("sess", 55_000); ok {
		t.Error("CalibrateFromActual without prior estimate should report absent")
	}
	if got := s.GetFactor("sess"); got != 1.0 {
		t.Errorf("GetFactor after failed calibration = %v, want 1.0", got)
	}
}

func TestCalibrateFromActual(t *testing.T) {
	s := newTestStore(t)
	s.SetLastEstimate("sess", 50_000)

	factor, ok := s.CalibrateFromActual("sess", 55_000)
	if !ok {
		t.Fatal("CalibrateFromActual reported absent")
	}
	if factor != 1.1 {
		t.Errorf("factor = %v, want 1.1", factor)
	}
	if got := s.GetFactor("sess"); got != 1.1 {
		t.Errorf("GetFactor = %v, want 1.1", got)
	}
}

func TestCalibrateFromActual_Clamped(t *testing.T) {
	s := newTestStore(t)
	s.SetLastEstimate("sess", 10_000)

	// Actual is 5.68x the estimate; the stored factor clamps to 2.0.
	factor, ok := s.CalibrateFromActual("sess", 56_800)
	if !ok {
		t.Fatal("CalibrateFromActual reported absent")
	}
	if factor != 2.0 {
		t.Errorf("factor = %v, want 2.0", factor)
	}
}

func TestCalibrateFromActual_RecordsActual(t *testing.T) {
	s := newTestStore(t)
	s.SetLastEstimate("sess", 50_000)
	if _, ok := s.CalibrateFromActual("sess", 55_000); !ok {
		t.Fatal("CalibrateFromActual reported absent")
	}

	rec, exists := s.Sessions()["sess"]
	if !exists {
		t.Fatal("session record missing")
	}
	if rec.LastActual == nil || *rec.LastActual != 55_000 {
		t.Errorf("LastActual = %v, want 55000", rec.LastActual)
	}
	if rec.CalibratedAt.IsZero() {
		t.Error("CalibratedAt not set")
	}
}

func TestClearSession(t *testing.T) {
	s := newTestStore(t)
	s.SetLastEstimate("sess", 50_000)
	s.SetFactor("sess", 1.5)

	s.ClearSession("sess")

	if got := s.GetFactor("sess"); got != 1.0 {
		t.Errorf("GetFactor after clear = %v, want 1.0", got)
	}
	if _, ok := s.GetLastEstimate("sess"); ok {
		t.Error("GetLastEstimate after clear should report absent")
	}
}

func TestRecentAverage_ExcludesStale(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	// Factor written two days ago falls outside the 24-hour window.
	s.now = func() time.Time { return base.Add(-48 * time.Hour) }
	s.SetFactor("stale", 2.0)

	s.now = func() time.Time { return base }
	s.SetFactor("fresh", 1.2)

	stats := s.GetStats()
	if stats.RecentAverageFactor != 1.2 {
		t.Errorf("RecentAverageFactor = %v, want 1.2 (stale excluded)", stats.RecentAverageFactor)
	}
}

func TestFileBackend_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(NewFileBackend(path))

	// Corrupt state degrades to empty, not a crash.
	if got := s.GetFactor("sess"); got != 1.0 {
		t.Errorf("GetFactor over corrupt file = %v, want 1.0", got)
	}

	// A write repairs the file.
	s.SetFactor("sess", 1.3)
	if got := s.GetFactor("sess"); got != 1.3 {
		t.Errorf("GetFactor after repair = %v, want 1.3", got)
	}
}

func TestFileBackend_AtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")
	s := NewStore(NewFileBackend(path))

	for i := 0; i < 5; i++ {
		s.SetLastEstimate("sess", 1000*(i+1))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}

	if got, ok := s.GetLastEstimate("sess"); !ok || got != 5000 {
		t.Errorf("GetLastEstimate = (%d, %v), want (5000, true)", got, ok)
	}
}

func TestFileBackend_ConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")

	// Each goroutine is a separate process in miniature: its own Store
	// over the same file, hammering the same session with a distinct
	// factor. The flock serializes writers and the rename keeps every
	// intermediate file whole; the final content is whichever writer
	// ran last, never a blend or a torn file.
	const writers = 8
	const rounds = 20
	factors := make([]float64, writers)
	for i := range factors {
		factors[i] = MinFactor + float64(i)*0.1
	}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(f float64) {
			defer wg.Done()
			s := NewStore(NewFileBackend(path))
			for r := 0; r < rounds; r++ {
				s.SetFactor("sess", f)
				s.SetLastEstimate("sess", int(f*10_000))
			}
		}(factors[i])
	}
	wg.Wait()

	state, err := NewFileBackend(path).Load()
	if err != nil {
		t.Fatalf("file unreadable after concurrent writes: %v", err)
	}
	rec, ok := state.Sessions["sess"]
	if !ok {
		t.Fatal("session record missing after concurrent writes")
	}
	won := false
	for _, f := range factors {
		if rec.Factor == f {
			won = true
			break
		}
	}
	if !won {
		t.Errorf("Factor = %v, not any single writer's value %v", rec.Factor, factors)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileBackend_PersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")

	first := NewStore(NewFileBackend(path))
	first.SetLastEstimate("sess", 50_000)
	first.SetFactor("sess", 1.4)

	// A separate Store over the same file (a later hook firing) sees
	// the persisted state.
	second := NewStore(NewFileBackend(path))
	if got := second.GetFactor("sess"); got != 1.4 {
		t.Errorf("GetFactor in second store = %v, want 1.4", got)
	}
	if got, ok := second.GetLastEstimate("sess"); !ok || got != 50_000 {
		t.Errorf("GetLastEstimate in second store = (%d, %v), want (50000, true)", got, ok)
	}
}

// failingBackend always errors, standing in for an unwritable disk.
type failingBackend struct{}

func (failingBackend) Load() (State, error) { return State{}, errors.New("disk on fire") }
func (failingBackend) Save(State) error     { return errors.New("disk on fire") }

func TestStore_BackendFailureNonFatal(t *testing.T) {
	s := NewStore(failingBackend{})

	// Best-effort uncalibrated answers instead of aborting.
	if got := s.GetFactor("sess"); got != 1.0 {
		t.Errorf("GetFactor = %v, want 1.0", got)
	}
	s.SetLastEstimate("sess", 1000)
	s.SetFactor("sess", 1.5)
	s.ClearSession("sess")
}
