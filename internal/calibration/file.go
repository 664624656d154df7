package calibration

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FileBackend persists the store state as a single JSON file. Saves are
// write-to-temp-then-rename, so a reader always sees a complete old or
// new file, and writers serialize on a sidecar flock so two hook
// firings in quick succession cannot interleave their renames. A race
// that slips through degrades to last-writer-wins, which the caller
// tolerates.
type FileBackend struct {
	path string
}

// DefaultStorePath returns the standard calibration file location.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "calibration.json"
	}
	return filepath.Join(home, ".jacques", "calibration.json")
}

// NewFileBackend returns a FileBackend at the given path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the whole state file. A missing file is an empty state; a
// corrupt or unreadable file is reported and degraded to empty rather
// than propagated.
func (b *FileBackend) Load() (State, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		log.Printf("jacques: calibration: reading %s: %v", b.path, err)
		return NewState(), fmt.Errorf("reading calibration file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("jacques: calibration: corrupt %s: %v (starting empty)", b.path, err)
		return NewState(), fmt.Errorf("parsing calibration file: %w", err)
	}
	if state.Sessions == nil {
		state.Sessions = make(map[string]*Record)
	}
	return state, nil
}

// Save rewrites the whole state file atomically under the writer lock.
func (b *FileBackend) Save(state State) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.Printf("jacques: calibration: creating %s: %v", dir, err)
		return fmt.Errorf("creating calibration dir: %w", err)
	}

	unlock, err := b.lock()
	if err != nil {
		log.Printf("jacques: calibration: locking %s: %v", b.path, err)
		return fmt.Errorf("locking calibration file: %w", err)
	}
	defer unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calibration state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		log.Printf("jacques: calibration: temp file in %s: %v", dir, err)
		return fmt.Errorf("creating temp calibration file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing calibration state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp calibration file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		log.Printf("jacques: calibration: replacing %s: %v", b.path, err)
		return fmt.Errorf("replacing calibration file: %w", err)
	}
	return nil
}

// lock takes an exclusive flock on the sidecar lock file and returns
// the release func. The lock serializes writers across processes.
func (b *FileBackend) lock() (func(), error) {
	f, err := os.OpenFile(b.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
