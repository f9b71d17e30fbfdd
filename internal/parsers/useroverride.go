package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/translate"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// UserOverridePath is the fixed, well-known location of the user-authored
// override document. The generation pipeline only ever reads it; it is never
// regenerated, backed up as output, or removed.
const UserOverridePath = ".github/instructions/user-overrides.md"

// overrideFrontmatter is the loosely-typed frontmatter of the user document.
// applyTo accepts a single pattern or a list; the ambiguity is resolved here
// and never propagates past the parser.
type overrideFrontmatter struct {
	ApplyTo     applyToList `yaml:"applyTo"`
	Priority    int         `yaml:"priority"`
	Description string      `yaml:"description"`
}

// applyToList unmarshals either a YAML scalar or a sequence of strings.
type applyToList []string

func (a *applyToList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*a = applyToList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*a = applyToList(list)
		return nil
	}
	return fmt.Errorf("applyTo must be a string or a list of strings")
}

// UserOverrideParser reads the user-override document. Its content is
// carried verbatim; only the frontmatter block is interpreted.
type UserOverrideParser struct{}

// NewUserOverrideParser creates the override parser.
func NewUserOverrideParser() *UserOverrideParser {
	return &UserOverrideParser{}
}

func (p *UserOverrideParser) Name() string { return "user-overrides" }

// Parse returns at most one instruction: the override document with
// userOverride pinned true. An absent document is not an error.
func (p *UserOverrideParser) Parse(ctx context.Context, workspaceRoot string) ([]types.ParsedInstruction, error) {
	data, err := os.ReadFile(filepath.Join(workspaceRoot, filepath.FromSlash(UserOverridePath)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user overrides: %w", err)
	}

	fm, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("malformed user override frontmatter: %w", err)
	}

	description := fm.Description
	if description == "" {
		description = "User-authored overrides (always take precedence)"
	}

	instr := types.ParsedInstruction{
		Content:  body,
		Category: types.CategoryUser,
		Frontmatter: types.Frontmatter{
			ApplyTo:      []string(fm.ApplyTo),
			Priority:     fm.Priority,
			UserOverride: true,
			Description:  description,
		},
		Concerns: detectConcerns(body),
	}
	return []types.ParsedInstruction{instr}, nil
}

// splitFrontmatter separates an optional leading YAML frontmatter block
// (delimited by "---" lines) from the document body. The body is returned
// byte-for-byte as authored.
func splitFrontmatter(doc string) (overrideFrontmatter, string, error) {
	var fm overrideFrontmatter

	if !strings.HasPrefix(doc, "---\n") && doc != "---" {
		return fm, doc, nil
	}

	rest := strings.TrimPrefix(doc, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		// An unterminated frontmatter fence is treated as plain content.
		return fm, doc, nil
	}

	block := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return overrideFrontmatter{}, "", err
	}
	return fm, body, nil
}

// concernPhrases maps content phrases to concern identifiers. The user
// document carries no structured concern metadata, so conflict detection
// against machine-derived guidance relies on this small phrase table.
var concernPhrases = map[string]string{
	"single quote":   translate.ConcernQuotes,
	"double quote":   translate.ConcernQuotes,
	"backtick":       translate.ConcernQuotes,
	"semicolon":      translate.ConcernSemicolons,
	"indent":         translate.ConcernIndentation,
	"trailing comma": translate.ConcernTrailingCommas,
	"line length":    translate.ConcernLineLength,
}

func detectConcerns(body string) []string {
	lower := strings.ToLower(body)
	seen := map[string]bool{}
	for phrase, concern := range concernPhrases {
		if strings.Contains(lower, phrase) {
			seen[concern] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	concerns := make([]string, 0, len(seen))
	for c := range seen {
		concerns = append(concerns, c)
	}
	sort.Strings(concerns)
	return concerns
}
