package transcript

import "encoding/json"

// rawEntry is a single line in a JSONL session transcript.
type rawEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Message   *rawMessage `json:"message,omitempty"`
}

// rawMessage is the message envelope inside a user or assistant entry.
type rawMessage struct {
	ID      string     `json:"id"`
	Role    string     `json:"role"`
	Model   string     `json:"model"`
	Content rawContent `json:"content"`
	Usage   *rawUsage  `json:"usage,omitempty"`
}

// rawContent accepts both content encodings: a bare string (plain user
// messages) or an array of typed blocks (assistant messages, tool use).
type rawContent []rawBlock

func (c *rawContent) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = rawContent{{Type: "text", Text: s}}
		return nil
	}
	var blocks []rawBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	*c = rawContent(blocks)
	return nil
}

// rawBlock is one content block. Only text-bearing block types matter
// here; tool_use inputs and tool results are skipped.
type rawBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

// rawUsage holds token counts from the API response.
type rawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}
