// Package skills estimates the fixed context overhead contributed by
// installed skill descriptors and the base system prompt.
package skills

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DescriptorName is the file name that marks a skill descriptor.
const DescriptorName = "SKILL.md"

// TokensPerDescriptor is the metadata cost of one installed skill.
// Only the name and short description are injected into context, never
// the descriptor body.
const TokensPerDescriptor = 50

// SystemPromptTokens is the constant base allowance for the tool's own
// system prompt, tool definitions, and user rules.
const SystemPromptTokens = 2500

// DefaultRoots returns the standard skill descriptor locations.
func DefaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".cursor", "skills-cursor"),
		filepath.Join(home, ".claude", "plugins", "cache"),
	}
}

// Scanner discovers skill descriptors under a fixed set of roots and
// memoizes the resulting overhead for the life of the Scanner.
type Scanner struct {
	roots []string

	mu     sync.Mutex
	cached bool
	count  int
	tokens int
}

// NewScanner returns a Scanner over the given root directories.
// Missing roots are skipped, not errors.
func NewScanner(roots []string) *Scanner {
	return &Scanner{roots: roots}
}

// Overhead returns the number of discovered descriptors and the total
// token overhead they plus the base system prompt contribute. The scan
// runs once; later calls return the memoized result.
func (s *Scanner) Overhead() (count, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cached {
		s.count = len(s.find())
		s.tokens = s.count*TokensPerDescriptor + SystemPromptTokens
		s.cached = true
	}
	return s.count, s.tokens
}

// Invalidate drops the memoized scan so the next Overhead call rescans.
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.cached = false
	s.mu.Unlock()
}

// Descriptors returns the paths of all discovered skill descriptors.
// Unlike Overhead, this is not memoized; it is a diagnostics path.
func (s *Scanner) Descriptors() []string {
	return s.find()
}

func (s *Scanner) find() []string {
	var found []string
	for _, root := range s.roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep walking the rest
			}
			if !d.IsDir() && d.Name() == DescriptorName {
				found = append(found, path)
			}
			return nil
		})
	}
	return found
}

var (
	frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---`)
	descriptionRe = regexp.MustCompile(`(?m)^description:\s*(.+)$`)
)

// Description extracts the description field from a descriptor's YAML
// frontmatter, or "" if absent or unreadable.
func Description(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	fm := frontmatterRe.FindSubmatch(data)
	if fm == nil {
		return ""
	}
	m := descriptionRe.FindSubmatch(fm[1])
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(m[1]))
}
