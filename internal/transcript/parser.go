// Package transcript parses JSONL session transcripts: the
// conversational text that feeds token estimation, and the API usage
// counts that serve as ground truth for calibration.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// Usage holds the token counts reported by the API for one response.
type Usage struct {
	InputTokens         int64 `json:"input_tokens"`
	OutputTokens        int64 `json:"output_tokens"`
	CacheCreationTokens int64 `json:"cache_creation_tokens"`
	CacheReadTokens     int64 `json:"cache_read_tokens"`
}

// ContextTokens is the total prompt-side context the response saw:
// fresh input plus everything served from or written to cache.
func (u Usage) ContextTokens() int {
	return int(u.InputTokens + u.CacheCreationTokens + u.CacheReadTokens)
}

// Transcript is the parsed form of a JSONL session file.
type Transcript struct {
	SessionID   string
	Model       string // model of the last assistant entry
	Text        string // concatenated message text, the estimation input
	Entries     int
	ParseErrors int
	// LastUsage is the usage block of the last assistant entry that
	// carried one, or nil. Its ContextTokens is the authoritative
	// context size at that point in the session.
	LastUsage *Usage
}

// ParseFile reads and parses a JSONL transcript from disk.
func ParseFile(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads JSONL lines and accumulates text and usage. Lines whose
// top-level type is neither "user" nor "assistant" are skipped without
// a full JSON parse.
func Parse(r io.Reader) (*Transcript, error) {
	t := &Transcript{}
	var text strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		entryType := extractTopLevelType(line)
		if entryType == "" || entryType == "system" {
			continue
		}

		var entry rawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			t.ParseErrors++
			continue
		}
		t.Entries++

		if t.SessionID == "" && entry.SessionID != "" {
			t.SessionID = entry.SessionID
		}
		if entry.Message == nil {
			continue
		}
		msg := entry.Message

		for _, block := range msg.Content {
			switch block.Type {
			case "text":
				appendText(&text, block.Text)
			case "thinking":
				appendText(&text, block.Thinking)
			}
		}

		if entryType != "assistant" {
			continue
		}
		if msg.Model != "" {
			t.Model = msg.Model
		}
		if msg.Usage == nil {
			continue
		}
		// Streamed responses repeat a message id with updated usage;
		// the final line always wins, so the last assistant entry
		// overall reflects the current context size.
		t.LastUsage = &Usage{
			InputTokens:         msg.Usage.InputTokens,
			OutputTokens:        msg.Usage.OutputTokens,
			CacheCreationTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadTokens:     msg.Usage.CacheReadInputTokens,
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	t.Text = text.String()
	return t, nil
}

// IsJSONL reports whether text looks like a JSONL transcript rather
// than plain conversation text. Cheap check on the first line only.
func IsJSONL(text string) bool {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "{") && strings.Contains(line, `"type"`)
}

func appendText(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(s)
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are
// ignored. Early-exits once found, making cost O(1) vs line length.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
				// "type" appeared as a value, not a key. Keep scanning.
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value and the caller should continue.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true // key with non-string value
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	v := string(line[i : i+end])
	switch v {
	case "assistant", "user", "system":
		return v, true
	}
	return "", true // valid key but irrelevant type
}

// skipJSONString advances past a JSON string starting at the opening quote.
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
