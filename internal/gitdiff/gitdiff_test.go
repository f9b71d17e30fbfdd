package gitdiff

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	run("init")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.ts"), []byte("const a = 1;\n"), 0644))
	run("add", "-A")
	run("commit", "-m", "initial")
	return dir
}

func TestCapture_CleanTree(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	c, err := NewCapturer(ctx)
	require.NoError(t, err)

	report, err := c.Capture(ctx, dir)
	require.NoError(t, err)
	assert.False(t, report.Status.HasChanges)
	assert.Contains(t, report.Markdown(), "Working tree clean")
}

func TestCaptureAndWrite_DirtyTree(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.ts"), []byte("const a = 2;\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.ts"), []byte("export {};\n"), 0644))

	c, err := NewCapturer(ctx)
	require.NoError(t, err)

	rel, err := c.Write(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, OutputPath, rel)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(OutputPath)))
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "- modified: app.ts")
	assert.Contains(t, md, "- untracked: new.ts")
	assert.Contains(t, md, "## Unstaged changes")
	assert.Contains(t, md, "const a = 2;")
}

func TestUnified(t *testing.T) {
	oldText := "line one\nline two\nline three\n"
	newText := "line one\nline 2\nline three\n"

	diff := Unified(oldText, newText)
	assert.Contains(t, diff, "-line two")
	assert.Contains(t, diff, "+line 2")
	assert.Contains(t, diff, " line one")

	assert.Empty(t, Unified(oldText, oldText), "identical inputs produce an empty diff")
}

func TestUnified_WholeDocumentReplaced(t *testing.T) {
	diff := Unified("", "a\nb\n")
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "+"), "line %q should be an insertion", l)
	}
}
