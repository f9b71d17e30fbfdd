package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

func lintInstr(content string, concerns ...string) types.ParsedInstruction {
	return types.ParsedInstruction{Content: content, Category: types.CategoryLint, Concerns: concerns}
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, ".github/instructions/lint-rules.instructions.md", PathFor(types.CategoryLint, ""))
	assert.Equal(t, ".github/instructions/user.instructions.md", PathFor(types.CategoryUser, ""))
	assert.Equal(t, ".github/instructions/angular.instructions.md", PathFor(types.CategoryFramework, "angular"))
	assert.Equal(t, ".github/instructions/react.instructions.md", PathFor(types.CategoryFramework, "react"))

	// Unknown categories land in the general document instead of vanishing.
	assert.Equal(t, ".github/instructions/general.instructions.md", PathFor(types.Category("mystery"), ""))
}

func TestMerge_PriorityBands(t *testing.T) {
	m := NewManager()

	res := m.Merge([][]types.ParsedInstruction{
		{lintInstr("Lint thing.")},
		{{Content: "Format thing.", Category: types.CategoryFormatting}},
		{{Content: "Framework thing.", Category: types.CategoryFramework, Frontmatter: types.Frontmatter{Framework: "react"}}},
		{{Content: "User thing.", Category: types.CategoryUser, Frontmatter: types.Frontmatter{UserOverride: true}}},
	})

	byContent := map[string]types.PrioritizedInstruction{}
	for _, pi := range res.Instructions {
		byContent[pi.Content] = pi
	}
	assert.Equal(t, types.PriorityLint, byContent["Lint thing."].Priority)
	assert.Equal(t, types.PriorityFormatting, byContent["Format thing."].Priority)
	assert.Equal(t, types.PriorityFramework, byContent["Framework thing."].Priority)
	assert.Equal(t, types.PriorityUserOverride, byContent["User thing."].Priority)
}

func TestMerge_ExplicitPriorityOverridesBand(t *testing.T) {
	m := NewManager()

	res := m.Merge([][]types.ParsedInstruction{
		{{Content: "Boosted.", Category: types.CategoryLint, Frontmatter: types.Frontmatter{Priority: 700}}},
	})
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, 700, res.Instructions[0].Priority)
}

func TestMerge_UserOverridePriorityIsPinned(t *testing.T) {
	m := NewManager()

	// Even an explicit frontmatter priority cannot demote a user override.
	res := m.Merge([][]types.ParsedInstruction{
		{{Content: "Mine.", Category: types.CategoryUser, Frontmatter: types.Frontmatter{UserOverride: true, Priority: 5}}},
	})
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, types.PriorityUserOverride, res.Instructions[0].Priority)
}

func TestMerge_DeduplicatesExactPairs(t *testing.T) {
	m := NewManager()

	// Two sources independently emit the identical instruction.
	res := m.Merge([][]types.ParsedInstruction{
		{lintInstr("Remove unused variables, imports, and function parameters.")},
		{lintInstr("Remove unused variables, imports, and function parameters.")},
	})
	assert.Len(t, res.Instructions, 1)
	assert.Empty(t, res.Conflicts)
}

func TestMerge_SameContentDifferentFilesBothKept(t *testing.T) {
	m := NewManager()

	res := m.Merge([][]types.ParsedInstruction{
		{lintInstr("Shared guidance.")},
		{{Content: "Shared guidance.", Category: types.CategoryFormatting}},
	})
	assert.Len(t, res.Instructions, 2)
}

func TestMerge_OrderWithinFileIsPriorityDescendingStable(t *testing.T) {
	m := NewManager()

	res := m.Merge([][]types.ParsedInstruction{
		{
			{Content: "low-a", Category: types.CategoryLint, Frontmatter: types.Frontmatter{Priority: 10}},
			{Content: "high", Category: types.CategoryLint, Frontmatter: types.Frontmatter{Priority: 40}},
			{Content: "low-b", Category: types.CategoryLint, Frontmatter: types.Frontmatter{Priority: 10}},
		},
	})

	require.Len(t, res.Instructions, 3)
	assert.Equal(t, "high", res.Instructions[0].Content)
	// Ties keep insertion order.
	assert.Equal(t, "low-a", res.Instructions[1].Content)
	assert.Equal(t, "low-b", res.Instructions[2].Content)
}

func TestMerge_UserOverrideWinsConflict(t *testing.T) {
	m := NewManager()

	res := m.Merge([][]types.ParsedInstruction{
		{lintInstr("Always use double quotes for string literals.", "quotes")},
		{{
			Content:     "Use single quotes everywhere.",
			Category:    types.CategoryUser,
			Frontmatter: types.Frontmatter{UserOverride: true},
			Concerns:    []string{"quotes"},
		}},
	})

	contents := make([]string, 0, len(res.Instructions))
	for _, pi := range res.Instructions {
		contents = append(contents, pi.Content)
	}
	assert.Contains(t, contents, "Use single quotes everywhere.")
	assert.NotContains(t, contents, "Always use double quotes for string literals.")

	require.Len(t, res.Conflicts, 1)
	note := res.Conflicts[0]
	assert.Equal(t, "quotes", note.Concern)
	assert.Equal(t, types.CategoryUser, note.KeptCategory)
	assert.Equal(t, types.CategoryLint, note.DroppedCategory)
	assert.Equal(t, "Always use double quotes for string literals.", note.DroppedContent)
}

func TestMerge_EqualPrioritySameConcernBothKept(t *testing.T) {
	m := NewManager()

	// Complementary formatting options about indentation must not drop each
	// other.
	res := m.Merge([][]types.ParsedInstruction{
		{
			{Content: "Indent with spaces, not tabs.", Category: types.CategoryFormatting, Concerns: []string{"indentation"}},
			{Content: "Use an indentation width of 2 spaces.", Category: types.CategoryFormatting, Concerns: []string{"indentation"}},
		},
	})
	assert.Len(t, res.Instructions, 2)
	assert.Empty(t, res.Conflicts)
}

func TestMerge_EmptySources(t *testing.T) {
	m := NewManager()

	res := m.Merge([][]types.ParsedInstruction{nil, {}, nil})
	assert.Empty(t, res.Instructions)
	assert.Empty(t, res.Conflicts)
}
