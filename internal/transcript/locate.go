package transcript

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultRoots returns the directories session transcripts live under.
func DefaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".claude", "projects"),
	}
}

// Locate finds the transcript file for a session id under the given
// roots. Session files are named <session-id>.jsonl inside per-project
// directories; subagent transcripts live deeper and are skipped so the
// main session file wins.
func Locate(sessionID string, roots []string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("empty session id")
	}
	want := sessionID + ".jsonl"

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		var found string
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep walking the rest
			}
			if d.IsDir() || d.Name() != want {
				return nil
			}
			if filepath.Base(filepath.Dir(path)) == "subagents" {
				return nil
			}
			found = path
			return fs.SkipAll
		})
		if found != "" {
			return found, nil
		}
	}
	return "", fmt.Errorf("no transcript found for session %s", sessionID)
}
