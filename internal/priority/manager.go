// Package priority merges instruction lists from all configuration sources
// into one deterministic, priority-ordered set with conflict resolution.
package priority

import (
	"fmt"
	"sort"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// Destination paths, relative to the workspace root. Each category maps to
// exactly one document, except framework, which gets one document per
// distinct framework name.
const (
	IndexPath      = ".github/copilot-instructions.md"
	instructionDir = ".github/instructions"
)

var categoryPaths = map[types.Category]string{
	types.CategoryUser:       instructionDir + "/user.instructions.md",
	types.CategoryGeneral:    instructionDir + "/general.instructions.md",
	types.CategoryLanguage:   instructionDir + "/language.instructions.md",
	types.CategoryLint:       instructionDir + "/lint-rules.instructions.md",
	types.CategoryFormatting: instructionDir + "/formatting.instructions.md",
}

// PathFor returns the destination document for an instruction. Deterministic:
// the same (category, framework) always maps to the same path.
func PathFor(category types.Category, framework string) string {
	if category == types.CategoryFramework && framework != "" {
		return fmt.Sprintf("%s/%s.instructions.md", instructionDir, framework)
	}
	if p, ok := categoryPaths[category]; ok {
		return p
	}
	return categoryPaths[types.CategoryGeneral]
}

// MergeResult is the output of Merge: the surviving prioritized instructions
// plus notes for everything dropped by semantic conflict resolution.
type MergeResult struct {
	Instructions []types.PrioritizedInstruction
	Conflicts    []types.ConflictNote
}

// Manager implements the merge/precedence algorithm.
type Manager struct{}

// NewManager creates a priority manager.
func NewManager() *Manager {
	return &Manager{}
}

// Merge flattens all source lists, assigns priorities and destinations,
// deduplicates, orders, and resolves semantic conflicts.
//
// Ordering guarantees: within one destination document, instructions are
// sorted by priority descending with insertion order breaking ties (stable).
// Instruction order affects how the assistant weighs conflicting guidance,
// so the stability is a correctness requirement.
func (m *Manager) Merge(sources [][]types.ParsedInstruction) MergeResult {
	// Steps 1-3: flatten, assign priority from band (or explicit
	// frontmatter priority), assign destination path.
	var flat []types.PrioritizedInstruction
	for _, src := range sources {
		for _, in := range src {
			pi := types.PrioritizedInstruction{ParsedInstruction: in}
			pi.Priority = resolvePriority(in)
			pi.FilePath = PathFor(in.Category, in.Frontmatter.Framework)
			flat = append(flat, pi)
		}
	}

	// Step 4: drop exact (filePath, content) duplicates, keeping the first.
	type dedupKey struct {
		path    string
		content string
	}
	seen := make(map[dedupKey]bool, len(flat))
	deduped := flat[:0]
	for _, pi := range flat {
		k := dedupKey{pi.FilePath, pi.Content}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, pi)
	}

	// Step 5: order within each destination by priority descending,
	// insertion order on ties. Destinations themselves sort by path so the
	// overall sequence is deterministic.
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].FilePath != deduped[j].FilePath {
			return deduped[i].FilePath < deduped[j].FilePath
		}
		return deduped[i].Priority > deduped[j].Priority
	})

	// Step 6: semantic conflicts. Walk in global priority order; the first
	// holder of a concern wins, and any lower-priority instruction that
	// addresses the same concern with different guidance is dropped with a
	// recorded reason. Equal-priority instructions sharing a concern are
	// complementary (e.g. tab width plus tabs-vs-spaces) and both survive.
	instructions, conflicts := m.resolveConflicts(deduped)

	return MergeResult{Instructions: instructions, Conflicts: conflicts}
}

// resolvePriority applies the band table. An explicit frontmatter priority
// overrides the band, except for user overrides, which stay pinned to the
// absolute user band.
func resolvePriority(in types.ParsedInstruction) int {
	if in.Frontmatter.UserOverride || in.Category == types.CategoryUser {
		return types.PriorityUserOverride
	}
	if in.Frontmatter.Priority > 0 {
		return in.Frontmatter.Priority
	}
	return types.BandFor(in.Category)
}

// concernHolder records the winning instruction for a concern.
type concernHolder struct {
	content  string
	category types.Category
	priority int
}

func (m *Manager) resolveConflicts(deduped []types.PrioritizedInstruction) ([]types.PrioritizedInstruction, []types.ConflictNote) {
	// Global priority-descending view; stable so insertion order still
	// breaks ties.
	order := make([]int, len(deduped))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return deduped[order[a]].Priority > deduped[order[b]].Priority
	})

	holders := map[string]concernHolder{}
	dropped := map[int]types.ConflictNote{}

	for _, idx := range order {
		pi := deduped[idx]
		for _, concern := range pi.Concerns {
			h, ok := holders[concern]
			if !ok {
				holders[concern] = concernHolder{content: pi.Content, category: pi.Category, priority: pi.Priority}
				continue
			}
			if h.content == pi.Content || h.priority == pi.Priority {
				continue
			}
			dropped[idx] = types.ConflictNote{
				Concern:         concern,
				KeptCategory:    h.category,
				KeptPriority:    h.priority,
				DroppedCategory: pi.Category,
				DroppedPriority: pi.Priority,
				DroppedContent:  pi.Content,
				Reason: fmt.Sprintf("conflicting %s guidance: %s instruction (priority %d) outranks %s instruction (priority %d)",
					concern, h.category, h.priority, pi.Category, pi.Priority),
			}
			break
		}
	}

	var kept []types.PrioritizedInstruction
	var conflicts []types.ConflictNote
	for i, pi := range deduped {
		if note, isDropped := dropped[i]; isDropped {
			conflicts = append(conflicts, note)
			continue
		}
		kept = append(kept, pi)
	}
	return kept, conflicts
}
