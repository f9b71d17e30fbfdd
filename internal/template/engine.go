// Package template renders a prioritized instruction set into instruction
// documents: one per destination path plus a single index document.
// Rendering is deterministic: identical input (including the generation
// timestamp) produces byte-identical output, which the orchestrator relies
// on for its update-vs-noop decision.
package template

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/priority"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// generatedPrefix is the metadata line carrying the render timestamp. It is
// the only volatile line in a document; StripVolatile removes it for
// content comparison.
const generatedPrefix = "generated:"

// docMeta is the machine-readable metadata block at the top of every
// generated document. Rendered through yaml.Marshal of this struct, so
// field order (and therefore output bytes) is fixed.
type docMeta struct {
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Priority    int      `yaml:"priority"`
	ApplyTo     []string `yaml:"applyTo,omitempty"`
	Generated   string   `yaml:"generated"`
}

// Engine renders instruction documents.
type Engine struct{}

// NewEngine creates a template engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Render produces one document per distinct destination path, plus the index
// document at priority.IndexPath. Instructions must already be ordered by
// the priority manager; Render preserves that order within each document.
func (e *Engine) Render(instructions []types.PrioritizedInstruction, generatedAt time.Time) (map[string]string, error) {
	ts := generatedAt.UTC().Format(time.RFC3339)

	// Group by destination, preserving instruction order.
	paths := []string{}
	grouped := map[string][]types.PrioritizedInstruction{}
	for _, pi := range instructions {
		if _, ok := grouped[pi.FilePath]; !ok {
			paths = append(paths, pi.FilePath)
		}
		grouped[pi.FilePath] = append(grouped[pi.FilePath], pi)
	}

	docs := make(map[string]string, len(paths)+1)
	for _, path := range paths {
		doc, err := renderDocument(grouped[path], ts)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", path, err)
		}
		docs[path] = doc
	}

	index, err := renderIndex(paths, grouped, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to render index: %w", err)
	}
	docs[priority.IndexPath] = index

	return docs, nil
}

// renderDocument emits the metadata block followed by the concatenated,
// priority-ordered instruction bodies.
func renderDocument(group []types.PrioritizedInstruction, ts string) (string, error) {
	meta := docMeta{
		Description: documentDescription(group),
		Category:    string(group[0].Category),
		Priority:    group[0].Priority, // highest in the document: group is priority-ordered
		ApplyTo:     unionApplyTo(group),
		Generated:   ts,
	}

	head, err := yaml.Marshal(meta)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")

	for i, pi := range group {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimRight(pi.Content, "\n"))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// renderIndex emits the single index document: the precedence rule plus one
// line per generated file with its description and priority. Files are
// listed by document priority descending, path ascending on ties.
func renderIndex(paths []string, grouped map[string][]types.PrioritizedInstruction, ts string) (string, error) {
	meta := docMeta{
		Description: "Index of generated AI assistant instruction documents",
		Category:    string(types.CategoryGeneral),
		Priority:    types.PriorityProjectIndex,
		Generated:   ts,
	}
	head, err := yaml.Marshal(meta)
	if err != nil {
		return "", err
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := grouped[sorted[i]][0].Priority, grouped[sorted[j]][0].Priority
		if pi != pj {
			return pi > pj
		}
		return sorted[i] < sorted[j]
	})

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString("# AI Assistant Instructions\n\n")
	b.WriteString("These documents steer AI coding assistants working in this repository.\n")
	b.WriteString("Precedence: when two instructions conflict, the higher priority wins.\n")
	b.WriteString("User overrides (priority 1000) are absolute and always beat machine-derived guidance.\n")

	if len(sorted) > 0 {
		b.WriteString("\n## Documents\n\n")
		for _, path := range sorted {
			group := grouped[path]
			fmt.Fprintf(&b, "- `%s` (priority %d): %s\n", path, group[0].Priority, documentDescription(group))
		}
	}
	return b.String(), nil
}

// documentDescription picks the one-line description for a document: the
// highest-priority instruction's description, or a category default.
func documentDescription(group []types.PrioritizedInstruction) string {
	for _, pi := range group {
		if pi.Frontmatter.Description != "" {
			return pi.Frontmatter.Description
		}
	}
	switch group[0].Category {
	case types.CategoryUser:
		return "User-authored overrides (always take precedence)"
	case types.CategoryLint:
		return "Guidance derived from lint rules"
	case types.CategoryFormatting:
		return "Guidance derived from formatter options"
	case types.CategoryLanguage:
		return "Language-level guidance"
	case types.CategoryFramework:
		return "Framework-specific guidance"
	default:
		return "Project guidance"
	}
}

// unionApplyTo merges the applicability patterns of all instructions in a
// document, sorted and deduplicated.
func unionApplyTo(group []types.PrioritizedInstruction) []string {
	seen := map[string]bool{}
	var patterns []string
	for _, pi := range group {
		for _, p := range pi.Frontmatter.ApplyTo {
			if !seen[p] {
				seen[p] = true
				patterns = append(patterns, p)
			}
		}
	}
	sort.Strings(patterns)
	return patterns
}

// StripVolatile removes the generated-timestamp line so two renders of the
// same content compare equal regardless of when they ran.
func StripVolatile(doc string) string {
	lines := strings.Split(doc, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, generatedPrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
