package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/backup"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/config"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/parsers"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/priority"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/workspace"
)

type fixture struct {
	root  string
	store *backup.Store
	orch  *Orchestrator
	clock *fakeClock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	write(t, root, "package.json", `{"name":"fixture"}`)

	store, err := backup.NewStore(filepath.Join(root, backup.DefaultDBPath), 5)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	orch, err := New(Options{
		WorkspaceRoot: root,
		Config:        config.DefaultConfig(),
		Backups:       store,
		Now:           clock.now,
	})
	require.NoError(t, err)

	return &fixture{root: root, store: store, orch: orch, clock: clock}
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestGenerate_CleanWorkspaceProducesOnlyIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, err := f.orch.Analyze()
	require.NoError(t, err)
	assert.False(t, state.Exists)

	res := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, res.Kind, "unexpected result: %+v", res)
	assert.Empty(t, res.BackupID, "no backup for a first run with nothing to lose")
	assert.Equal(t, []string{priority.IndexPath}, res.Written)

	index := read(t, f.root, priority.IndexPath)
	assert.NotContains(t, index, "lint-rules")
	assert.NotContains(t, index, "formatting")
	assert.Contains(t, index, "higher priority wins")
}

func TestGenerate_FullWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	write(t, f.root, "package.json", `{
		"name": "app",
		"dependencies": {"@angular/core": "^17.1.0"},
		"devDependencies": {"jest": "^29.0.0"}
	}`)
	write(t, f.root, parsers.ESLintRulesPath, `{"quotes": ["error", "single"], "eqeqeq": "error"}`)
	write(t, f.root, ".prettierrc", `{"printWidth": 100}`)
	write(t, f.root, parsers.UserOverridePath, "Prefer small focused commits.\n")

	res := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, res.Kind, "unexpected result: %+v", res)

	assert.Contains(t, res.Written, priority.IndexPath)
	assert.Contains(t, res.Written, ".github/instructions/lint-rules.instructions.md")
	assert.Contains(t, res.Written, ".github/instructions/formatting.instructions.md")
	assert.Contains(t, res.Written, ".github/instructions/angular.instructions.md")
	assert.Contains(t, res.Written, ".github/instructions/jest.instructions.md")
	assert.Contains(t, res.Written, ".github/instructions/user.instructions.md")

	lint := read(t, f.root, ".github/instructions/lint-rules.instructions.md")
	assert.Contains(t, lint, "Always use single quotes for string literals.")

	user := read(t, f.root, ".github/instructions/user.instructions.md")
	assert.Contains(t, user, "Prefer small focused commits.\n")
}

func TestGenerate_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	write(t, f.root, parsers.ESLintRulesPath, `{"semi": ["error", "never"]}`)

	first := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, first.Kind)
	require.NotEmpty(t, first.Written)

	// Second run with no configuration change: even with a later clock,
	// every file is skipped and nothing is written.
	f.clock.t = f.clock.t.Add(24 * time.Hour)
	second := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, second.Kind)
	assert.Empty(t, second.Written, "idempotent rerun must perform zero writes")
	assert.ElementsMatch(t, first.Written, second.Skipped)
}

func TestGenerate_UserOverrideBeatsLint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	write(t, f.root, parsers.ESLintRulesPath, `{"quotes": ["error", "double"]}`)
	write(t, f.root, parsers.UserOverridePath, "Use single quotes everywhere, the linter is wrong.\n")

	res := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, res.Kind)

	// The losing lint guidance is recorded, not emitted.
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "quotes", res.Conflicts[0].Concern)
	assert.Equal(t, types.CategoryUser, res.Conflicts[0].KeptCategory)

	user := read(t, f.root, ".github/instructions/user.instructions.md")
	assert.Contains(t, user, "Use single quotes everywhere, the linter is wrong.\n")

	lintPath := filepath.Join(f.root, ".github", "instructions", "lint-rules.instructions.md")
	if data, err := os.ReadFile(lintPath); err == nil {
		assert.NotContains(t, string(data), "double quotes")
	}
}

func TestGenerate_UpdateTakesBackupFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, first.Kind)

	write(t, f.root, parsers.ESLintRulesPath, `{"no-console": "warn"}`)
	second := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, second.Kind)
	require.NotEmpty(t, second.BackupID)

	backups, err := f.orch.ListBackups(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, backups)
	assert.Equal(t, second.BackupID, backups[0].ID, "newest backup first")
	assert.Equal(t, "pre-update", backups[0].Label)
	assert.Contains(t, backups[0].Files, priority.IndexPath)
}

func TestGenerate_RestoreAfterBadUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	write(t, f.root, parsers.ESLintRulesPath, `{"quotes": ["error", "single"]}`)
	first := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, first.Kind)

	preUpdate := map[string]string{}
	state, err := f.orch.Analyze()
	require.NoError(t, err)
	for _, rel := range state.Files {
		preUpdate[rel] = read(t, f.root, rel)
	}

	// A config change rewrites the documents.
	write(t, f.root, parsers.ESLintRulesPath, `{"quotes": ["error", "double"], "semi": [2, "never"]}`)
	second := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, second.Kind)
	require.NotEmpty(t, second.BackupID)
	assert.NotEqual(t, preUpdate[".github/instructions/lint-rules.instructions.md"],
		read(t, f.root, ".github/instructions/lint-rules.instructions.md"))

	// Unhappy with the update: restore the pre-update snapshot.
	res := f.orch.Restore(ctx, second.BackupID)
	require.Equal(t, types.ResultSuccess, res.Kind, "unexpected result: %+v", res)

	for rel, want := range preUpdate {
		assert.Equal(t, want, read(t, f.root, rel), "restored %s must match pre-update bytes", rel)
	}

	after, err := f.orch.Analyze()
	require.NoError(t, err)
	assert.True(t, after.Exists)
	assert.ElementsMatch(t, state.Files, after.Files)
}

func TestGenerate_RemoveIsReversible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, first.Kind)

	res := f.orch.Generate(ctx, types.DecisionRemove, "")
	require.Equal(t, types.ResultSuccess, res.Kind)
	require.NotEmpty(t, res.BackupID)

	state, err := f.orch.Analyze()
	require.NoError(t, err)
	assert.False(t, state.Exists, "remove must delete the generated set")

	// Removal is reversible via the backup taken first.
	restored := f.orch.Restore(ctx, res.BackupID)
	require.Equal(t, types.ResultSuccess, restored.Kind)
	state, err = f.orch.Analyze()
	require.NoError(t, err)
	assert.True(t, state.Exists)
}

func TestGenerate_CancelLeavesFilesystemUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, first.Kind)

	before := read(t, f.root, priority.IndexPath)

	res := f.orch.Generate(ctx, types.DecisionCancel, "")
	assert.Equal(t, types.ResultCancelled, res.Kind)
	assert.Equal(t, before, read(t, f.root, priority.IndexPath))

	backups, err := f.orch.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, backups, "cancel must not create a backup")
}

func TestGenerate_ContextCancellationBeforeWrite(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.orch.Generate(ctx, types.DecisionUpdate, "")
	assert.Equal(t, types.ResultCancelled, res.Kind)

	state, err := f.orch.Analyze()
	require.NoError(t, err)
	assert.False(t, state.Exists, "cancelled run must leave no output")
}

func TestGenerate_BusyWorkspaceIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release, err := workspace.AcquireLock(f.root)
	require.NoError(t, err)
	defer release()

	res := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultFailed, res.Kind)
	assert.Equal(t, "lock", res.Step)

	var busy *types.ConcurrentGenerationError
	require.True(t, errors.As(res.Err, &busy))
}

func TestGenerate_MalformedSourceIsPartialSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	write(t, f.root, parsers.ESLintRulesPath, `{broken`)
	write(t, f.root, ".prettierrc", `{"singleQuote": true}`)

	res := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultPartial, res.Kind)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "eslint", res.Warnings[0].Source)

	// The healthy source still contributed.
	fmtDoc := read(t, f.root, ".github/instructions/formatting.instructions.md")
	assert.Contains(t, fmtDoc, "single quotes")
}

func TestRestore_UnknownIDFails(t *testing.T) {
	f := newFixture(t)

	res := f.orch.Restore(context.Background(), "0-missing")
	require.Equal(t, types.ResultFailed, res.Kind)
	var notFound *types.RestoreNotFoundError
	require.True(t, errors.As(res.Err, &notFound))
}

func TestGenerate_RemovedFrameworkFileIsCleanedUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	write(t, f.root, "package.json", `{"name":"app","dependencies":{"react":"^18.0.0"}}`)
	first := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, first.Kind)
	require.FileExists(t, filepath.Join(f.root, ".github", "instructions", "react.instructions.md"))

	// React is dropped from the workspace; its document must not linger.
	write(t, f.root, "package.json", `{"name":"app"}`)
	second := f.orch.Generate(ctx, types.DecisionUpdate, "")
	require.Equal(t, types.ResultSuccess, second.Kind)
	assert.NoFileExists(t, filepath.Join(f.root, ".github", "instructions", "react.instructions.md"))
}
