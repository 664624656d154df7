package report

import "strings"

// glyphRow is the visual token grid that opens a usage report.
const glyphRow = "⛁ ⛁ ⛁"

// leadIn is how far before the marker the block is widened, so the
// surrounding frame (the ⎿ prefix and grid left edge) is captured.
const leadIn = 200

// maxBlock bounds how much scrollback after the marker is kept; a
// report runs well under a hundred lines.
const maxBlock = 5000

// FindReport locates the most recent usage-report block inside raw
// terminal scrollback. Returns ok=false when no report is present.
func FindReport(terminal string) (block string, ok bool) {
	start := -1
	for _, m := range []string{marker, glyphRow} {
		if idx := strings.LastIndex(terminal, m); idx > start {
			start = idx
		}
	}
	if start < 0 {
		return "", false
	}

	end := min(start+maxBlock, len(terminal))
	start = max(0, start-leadIn)

	block = terminal[start:end]
	if !strings.Contains(block, marker) {
		return "", false
	}
	return block, true
}
