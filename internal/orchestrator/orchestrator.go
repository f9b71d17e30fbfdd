// Package orchestrator sequences a generation run: analyze existing output,
// apply the caller's decision, back up before any destructive change, run
// the parsers, merge, render, and write. The flow is an explicit state
// machine with one rule: no state may destroy data unless the preceding
// backup state completed.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/backup"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/config"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/docs"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/parsers"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/priority"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/template"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/translate"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/workspace"
)

// State names one phase of a generation run. Used in failure reporting so
// the caller always learns which step broke.
type State string

const (
	StateIdle       State = "idle"
	StateAnalyzing  State = "analyzing"
	StateBackingUp  State = "backing-up"
	StateGenerating State = "generating"
	StateWriting    State = "writing"
	StateDone       State = "done"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Options configures an Orchestrator.
type Options struct {
	// WorkspaceRoot is the absolute workspace root. Required.
	WorkspaceRoot string

	// Config is the tool configuration. Zero value gets defaults.
	Config config.Config

	// Backups is the snapshot store. Required.
	Backups *backup.Store

	// Docs serves cached official framework documentation. Optional; nil
	// (or Config.DocsEnabled=false) disables the docs source.
	Docs *docs.Fetcher

	// Table is the rule translation table. Defaults to the built-in table.
	Table *translate.Table

	// Now is the clock used for the generated timestamp. Defaults to
	// time.Now. Injectable for deterministic tests.
	Now func() time.Time
}

// Orchestrator owns all writes to the on-disk instruction document tree.
// Other components only ever hand it in-memory representations.
type Orchestrator struct {
	root    string
	cfg     config.Config
	backups *backup.Store
	docs    *docs.Fetcher
	table   *translate.Table
	engine  *template.Engine
	manager *priority.Manager
	now     func() time.Time
}

// New creates an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.WorkspaceRoot == "" {
		return nil, fmt.Errorf("workspace root is required")
	}
	if opts.Backups == nil {
		return nil, fmt.Errorf("backup store is required")
	}
	cfg := opts.Config
	if cfg.MaxBackups == 0 {
		cfg = config.DefaultConfig()
	}
	table := opts.Table
	if table == nil {
		table = translate.NewTable()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		root:    opts.WorkspaceRoot,
		cfg:     cfg,
		backups: opts.Backups,
		docs:    opts.Docs,
		table:   table,
		engine:  template.NewEngine(),
		manager: priority.NewManager(),
		now:     now,
	}, nil
}

// Analyze reports whether generated output already exists and which files
// make it up. Read-only.
func (o *Orchestrator) Analyze() (types.ExistingOutputState, error) {
	var files []string

	if fileExists(o.abs(priority.IndexPath)) {
		files = append(files, priority.IndexPath)
	}

	dir := o.abs(".github/instructions")
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return types.ExistingOutputState{}, fmt.Errorf("failed to read instruction directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".instructions.md") {
			continue
		}
		files = append(files, ".github/instructions/"+e.Name())
	}
	sort.Strings(files)

	return types.ExistingOutputState{
		Exists:           len(files) > 0,
		Files:            files,
		HasUserOverrides: fileExists(o.abs(parsers.UserOverridePath)),
	}, nil
}

// ListBackups returns all retained backups, most recent first.
func (o *Orchestrator) ListBackups(ctx context.Context) ([]types.Backup, error) {
	return o.backups.List(ctx)
}

// Restore overwrites the live document tree with the named backup. The
// workspace lock applies: restore mutates the same file set generation does.
func (o *Orchestrator) Restore(ctx context.Context, id string) types.Result {
	release, err := workspace.AcquireLock(o.root)
	if err != nil {
		return types.Failed(types.DecisionRestore, "lock", err)
	}
	defer release()

	return o.restoreLocked(ctx, id)
}

// Generate runs one generation. decision is consulted only when previous
// output exists; restoreID is consulted only for DecisionRestore.
//
// Cancellation via ctx is observed between steps, never mid-write, and only
// before the writing step; a cancelled run leaves the filesystem untouched.
func (o *Orchestrator) Generate(ctx context.Context, decision types.Decision, restoreID string) types.Result {
	release, err := workspace.AcquireLock(o.root)
	if err != nil {
		return types.Failed(decision, "lock", err)
	}
	defer release()

	// Analyzing.
	existing, err := o.Analyze()
	if err != nil {
		return types.Failed(decision, string(StateAnalyzing), err)
	}
	if err := ctx.Err(); err != nil {
		return types.Result{Kind: types.ResultCancelled, Decision: decision}
	}

	if !existing.Exists {
		// Nothing to lose: no backup, no decision needed.
		return o.generateAndWrite(ctx, types.DecisionUpdate, "")
	}

	switch decision {
	case types.DecisionCancel:
		return types.Result{Kind: types.ResultCancelled, Decision: decision}

	case types.DecisionRestore:
		res := o.restoreLocked(ctx, restoreID)
		return res

	case types.DecisionRemove:
		backupID, err := o.backUp(ctx, existing, "pre-remove")
		if err != nil {
			return types.Failed(decision, string(StateBackingUp), &types.BackupError{Err: err})
		}
		if err := o.removeFiles(existing.Files); err != nil {
			return types.Failed(decision, string(StateWriting), err)
		}
		return types.Result{Kind: types.ResultSuccess, Decision: decision, BackupID: backupID}

	case types.DecisionUpdate:
		backupID, err := o.backUp(ctx, existing, "pre-update")
		if err != nil {
			// Never generate over un-backed-up state.
			return types.Failed(decision, string(StateBackingUp), &types.BackupError{Err: err})
		}
		if err := ctx.Err(); err != nil {
			return types.Result{Kind: types.ResultCancelled, Decision: decision}
		}
		return o.generateAndWrite(ctx, decision, backupID)

	default:
		return types.Failed(decision, "decision", fmt.Errorf("unknown decision %q", decision))
	}
}

// Preview runs the in-memory pipeline without touching the filesystem and
// returns the rendered document set plus source warnings. Used for dry runs.
func (o *Orchestrator) Preview(ctx context.Context) (map[string]string, []*types.ConfigSourceError, error) {
	rendered, warnings, _, err := o.generate(ctx)
	return rendered, warnings, err
}

// ReadLive returns the current content of a generated document, or "" if it
// does not exist.
func (o *Orchestrator) ReadLive(rel string) string {
	data, err := os.ReadFile(o.abs(rel))
	if err != nil {
		return ""
	}
	return string(data)
}

// restoreLocked rolls the document tree back to a backup; the lock is
// already held by the caller. Generated files that exist now but were not
// part of the backup are removed, so the tree matches the captured state
// exactly.
func (o *Orchestrator) restoreLocked(ctx context.Context, id string) types.Result {
	written, err := o.backups.Restore(ctx, o.root, id)
	if err != nil {
		return types.Failed(types.DecisionRestore, "restore", err)
	}

	restored := make(map[string]bool, len(written))
	for _, rel := range written {
		restored[rel] = true
	}
	if existing, aErr := o.Analyze(); aErr == nil {
		for _, rel := range existing.Files {
			if !restored[rel] {
				_ = os.Remove(o.abs(rel))
			}
		}
	}

	return types.Result{Kind: types.ResultSuccess, Decision: types.DecisionRestore, Written: written}
}

// backUp snapshots the existing generated documents.
func (o *Orchestrator) backUp(ctx context.Context, existing types.ExistingOutputState, label string) (string, error) {
	var files []types.BackupFile
	for _, rel := range existing.Files {
		content, err := os.ReadFile(o.abs(rel))
		if err != nil {
			return "", fmt.Errorf("failed to capture %s: %w", rel, err)
		}
		files = append(files, types.BackupFile{Path: rel, Content: content})
	}
	b, err := o.backups.Create(ctx, files, label)
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

// generateAndWrite runs parsers, merge, render, and the write phase.
func (o *Orchestrator) generateAndWrite(ctx context.Context, decision types.Decision, backupID string) types.Result {
	// Generating.
	rendered, warnings, conflicts, err := o.generate(ctx)
	if err != nil {
		return types.Failed(decision, string(StateGenerating), err)
	}
	if err := ctx.Err(); err != nil {
		// Last cancellation point: nothing has touched the filesystem yet.
		return types.Result{Kind: types.ResultCancelled, Decision: decision}
	}

	// Writing.
	written, skipped, err := o.write(rendered)
	if err != nil {
		return types.Failed(decision, string(StateWriting), err)
	}

	kind := types.ResultSuccess
	if len(warnings) > 0 {
		kind = types.ResultPartial
	}
	return types.Result{
		Kind:      kind,
		Decision:  decision,
		Warnings:  warnings,
		Conflicts: conflicts,
		Written:   written,
		Skipped:   skipped,
		BackupID:  backupID,
	}
}

// generate runs the full in-memory pipeline: parsers -> merge -> render.
func (o *Orchestrator) generate(ctx context.Context) (map[string]string, []*types.ConfigSourceError, []types.ConflictNote, error) {
	info, err := workspace.Discover(o.root)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("workspace discovery failed: %w", err)
	}
	signals := workspace.FrameworkSignals(info)

	runner := parsers.NewRunner(
		parsers.NewESLintParser(o.table),
		parsers.NewPrettierParser(),
		parsers.NewFrameworkParser(signals),
		parsers.NewUserOverrideParser(),
	)
	sources, warnings := runner.Run(ctx, o.root)

	if o.docs != nil && o.cfg.DocsEnabled {
		names := make([]string, 0, len(signals))
		for _, sig := range signals {
			names = append(names, sig.Name)
		}
		if docInstrs := o.docs.CachedInstructions(names); len(docInstrs) > 0 {
			sources = append(sources, docInstrs)
		}
	}

	merged := o.manager.Merge(sources)

	rendered, err := o.engine.Render(merged.Instructions, o.now())
	if err != nil {
		return nil, nil, nil, err
	}
	return rendered, warnings, merged.Conflicts, nil
}

// write applies the rendered document set to disk. Unchanged files (modulo
// the generated timestamp) are skipped so a no-change run performs zero
// writes. Changed files are staged to temporary paths first and promoted
// only after every stage succeeded; generated files absent from the new set
// are removed last.
func (o *Orchestrator) write(rendered map[string]string) (written, skipped []string, err error) {
	paths := make([]string, 0, len(rendered))
	for path := range rendered {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	type staged struct {
		tmp, dst, rel string
	}
	var stages []staged
	cleanup := func() {
		for _, s := range stages {
			_ = os.Remove(s.tmp)
		}
	}

	for _, rel := range paths {
		dst := o.abs(rel)
		content := rendered[rel]

		if current, readErr := os.ReadFile(dst); readErr == nil {
			if template.StripVolatile(string(current)) == template.StripVolatile(content) {
				skipped = append(skipped, rel)
				continue
			}
		}

		if mkErr := os.MkdirAll(filepath.Dir(dst), 0755); mkErr != nil {
			cleanup()
			return nil, nil, &types.WriteError{Path: rel, Err: mkErr}
		}
		tmp := fmt.Sprintf("%s.tmp-%d", dst, os.Getpid())
		if wErr := os.WriteFile(tmp, []byte(content), 0644); wErr != nil {
			cleanup()
			return nil, nil, &types.WriteError{Path: rel, Err: wErr}
		}
		stages = append(stages, staged{tmp: tmp, dst: dst, rel: rel})
	}

	// Promote. A failure here can leave a partial set, which is exactly what
	// the pre-write backup exists for.
	for _, s := range stages {
		if rnErr := os.Rename(s.tmp, s.dst); rnErr != nil {
			cleanup()
			return written, skipped, &types.WriteError{Path: s.rel, Err: rnErr}
		}
		written = append(written, s.rel)
	}

	// Drop generated files that no longer exist in the rendered set, e.g. a
	// framework document for a framework that was removed.
	existing, aErr := o.Analyze()
	if aErr == nil {
		for _, rel := range existing.Files {
			if _, ok := rendered[rel]; !ok {
				_ = os.Remove(o.abs(rel))
			}
		}
	}

	return written, skipped, nil
}

// removeFiles deletes the current generated documents. Callers must have
// backed them up first.
func (o *Orchestrator) removeFiles(files []string) error {
	for _, rel := range files {
		if err := os.Remove(o.abs(rel)); err != nil && !os.IsNotExist(err) {
			return &types.WriteError{Path: rel, Err: err}
		}
	}
	return nil
}

func (o *Orchestrator) abs(rel string) string {
	return filepath.Join(o.root, filepath.FromSlash(rel))
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
