package model

// CategoryName identifies one of the fixed slots in a context usage report.
type CategoryName string

// The nine category slots a usage report can populate. Labels outside
// this set are dropped by the parser.
const (
	CategorySystemPrompt      CategoryName = "system_prompt"
	CategorySystemTools       CategoryName = "system_tools"
	CategoryMCPTools          CategoryName = "mcp_tools"
	CategoryCustomAgents      CategoryName = "custom_agents"
	CategoryMemoryFiles       CategoryName = "memory_files"
	CategorySkills            CategoryName = "skills"
	CategoryMessages          CategoryName = "messages"
	CategoryFreeSpace         CategoryName = "free_space"
	CategoryAutocompactBuffer CategoryName = "autocompact_buffer"
)

// CategoryNames lists all slots in report display order.
var CategoryNames = []CategoryName{
	CategorySystemPrompt,
	CategorySystemTools,
	CategoryMCPTools,
	CategoryCustomAgents,
	CategoryMemoryFiles,
	CategorySkills,
	CategoryMessages,
	CategoryFreeSpace,
	CategoryAutocompactBuffer,
}

// Item is a single line entry inside an item-bearing category
// (an MCP tool, a custom agent, a memory file, or a skill).
type Item struct {
	Name   string `json:"name"`
	Tokens int    `json:"tokens"`
}

// Category is one slot of the context breakdown.
type Category struct {
	Name       string  `json:"name"`
	Tokens     int     `json:"tokens"`
	Percentage float64 `json:"percentage"`
	Items      []Item  `json:"items,omitempty"`
}

// ContextBreakdown is the structured form of a tool-native usage report.
// It is constructed fresh per parse and never mutated afterwards.
type ContextBreakdown struct {
	Model          string                     `json:"model"`
	TotalTokens    int                        `json:"total_tokens"`
	MaxTokens      int                        `json:"max_tokens"`
	UsedPercentage float64                    `json:"used_percentage"`
	Categories     map[CategoryName]*Category `json:"categories"`
}
