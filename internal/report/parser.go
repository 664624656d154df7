// Package report parses the visual usage report a tool prints into its
// terminal (the /context block) into a structured breakdown.
package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gregory-lime/jacques-context-manager/internal/model"
)

// marker is the phrase that identifies a usage report. Input without it
// is rejected before any pattern matching runs.
const marker = "Context Usage"

// headerRe matches the summary line:
//
//	claude-sonnet-4-5-20250929 · 48k/200k tokens (24%)
//
// The thousands suffix is optional on both counts.
var headerRe = regexp.MustCompile(`([\w.-]+)\s*·\s*([\d.]+)(k?)\s*/\s*([\d.]+)(k?)\s*tokens\s*\((\d+(?:\.\d+)?)\s*%\)`)

// categoryRe matches one category line:
//
//	⛁ Memory files: 843 tokens (0.4%)
//
// The word "tokens" is optional because the free-space line omits it.
var categoryRe = regexp.MustCompile(`[⛁⛀⛶⛝]\s+([\w][\w ]*?):\s*([\d.]+)(k?)\s*(?:tokens\s*)?\(([\d.]+)\s*%\)`)

// itemRe matches one tree entry inside an item-bearing section:
//
//	└ mcp__deepwiki__read_wiki_structure: 123 tokens
var itemRe = regexp.MustCompile(`[└├]─?\s*([\w./-]+):\s*(\d+)\s*tokens`)

// itemSections maps the label text that opens an item-bearing section
// to its category slot. Section order in the raw text is arbitrary;
// each section is bounded by the nearest following section label.
var itemSections = []struct {
	label string
	slot  model.CategoryName
}{
	{"MCP tools", model.CategoryMCPTools},
	{"Custom agents", model.CategoryCustomAgents},
	{"Memory files", model.CategoryMemoryFiles},
	{"Skills", model.CategorySkills},
}

// Parse extracts a structured breakdown from raw usage-report text.
// Returns ok=false only when the marker phrase is absent; a report with
// a missing header or zero parseable categories still succeeds with
// partial data.
func Parse(raw string) (*model.ContextBreakdown, bool) {
	if !strings.Contains(raw, marker) {
		return nil, false
	}

	breakdown := &model.ContextBreakdown{
		Categories: make(map[model.CategoryName]*model.Category),
	}

	if m := headerRe.FindStringSubmatch(raw); m != nil {
		breakdown.Model = m[1]
		breakdown.TotalTokens = scaledTokens(m[2], m[3])
		breakdown.MaxTokens = scaledTokens(m[4], m[5])
		breakdown.UsedPercentage, _ = strconv.ParseFloat(m[6], 64)
	}

	for _, m := range categoryRe.FindAllStringSubmatch(raw, -1) {
		label := strings.TrimSpace(m[1])
		slot, ok := classify(label)
		if !ok {
			continue // unknown label, intentionally lossy
		}
		pct, _ := strconv.ParseFloat(m[4], 64)
		breakdown.Categories[slot] = &model.Category{
			Name:       label,
			Tokens:     scaledTokens(m[2], m[3]),
			Percentage: pct,
		}
	}

	attachItems(raw, breakdown)
	return breakdown, true
}

// classify maps a category label onto one of the nine fixed slots by
// case-insensitive substring matching. More specific substrings are
// checked before generic ones ("system prompt" before "prompt").
func classify(label string) (model.CategoryName, bool) {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "system prompt"):
		return model.CategorySystemPrompt, true
	case strings.Contains(lower, "system tools"):
		return model.CategorySystemTools, true
	case strings.Contains(lower, "mcp tools"):
		return model.CategoryMCPTools, true
	case strings.Contains(lower, "agents"):
		return model.CategoryCustomAgents, true
	case strings.Contains(lower, "memory"):
		return model.CategoryMemoryFiles, true
	case strings.Contains(lower, "skills"):
		return model.CategorySkills, true
	case strings.Contains(lower, "messages"):
		return model.CategoryMessages, true
	case strings.Contains(lower, "free"):
		return model.CategoryFreeSpace, true
	case strings.Contains(lower, "autocompact"), strings.Contains(lower, "buffer"):
		return model.CategoryAutocompactBuffer, true
	}
	return "", false
}

// attachItems assigns tree entries to their owning category. The raw
// text has no nesting markup, so containment is inferred from position:
// find the section's label, bound the window at the nearest following
// section label (or end of input), and match items inside the window.
func attachItems(raw string, breakdown *model.ContextBreakdown) {
	for _, section := range itemSections {
		cat, ok := breakdown.Categories[section.slot]
		if !ok {
			continue
		}

		start := sectionStart(raw, section.label)
		if start < 0 {
			continue
		}

		end := len(raw)
		for _, other := range itemSections {
			if other.label == section.label {
				continue
			}
			if pos := strings.Index(raw[start+len(section.label):], other.label); pos >= 0 {
				if bounded := start + len(section.label) + pos; bounded < end {
					end = bounded
				}
			}
		}

		for _, m := range itemRe.FindAllStringSubmatch(raw[start:end], -1) {
			tokens, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			cat.Items = append(cat.Items, model.Item{Name: m[1], Tokens: tokens})
		}
	}
}

// sectionStart locates a section header, preferring the detail form
// ("Skills · /skills") over the label's first appearance, which is
// usually the category summary line above the item listing.
func sectionStart(raw, label string) int {
	if idx := strings.Index(raw, label+" ·"); idx >= 0 {
		return idx
	}
	return strings.Index(raw, label)
}

// scaledTokens converts a numeric string with an optional thousands
// suffix into a token count, truncating toward zero.
func scaledTokens(num, suffix string) int {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if suffix == "k" {
		v *= 1000
	}
	return int(v)
}
