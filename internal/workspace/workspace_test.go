package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscover_WalksUpToPackageJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{
		"name": "my-app",
		"scripts": {"test": "jest"},
		"dependencies": {"react": "^18.3.1"},
		"devDependencies": {"prettier": "^3.0.0", "jest": "^29.0.0"}
	}`)
	nested := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(nested, 0755))

	info, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, root, info.Root)
	assert.Equal(t, "my-app", info.PackageName)
	assert.Equal(t, "jest", info.Scripts["test"])
	assert.Equal(t, "^18.3.1", info.Dependencies["react"])
	assert.Equal(t, "^29.0.0", info.Dependencies["jest"])
	assert.True(t, info.HasPrettier, "prettier devDependency counts as formatter config")
	assert.False(t, info.HasESLintRules)
	assert.False(t, info.HasUserOverrides)
	assert.Equal(t, "npm test", info.TestCommand())
}

func TestDiscover_NoWorkspaceFails(t *testing.T) {
	// A bare temp dir with no package.json or .git anywhere up the chain is
	// unlikely, but /tmp subdirs rarely have either; accept both outcomes
	// only when an ancestor happens to be a repo.
	root := t.TempDir()
	info, err := Discover(root)
	if err == nil {
		// An ancestor of the temp dir was a workspace; at minimum the root
		// must be an ancestor of our start dir.
		assert.NotEqual(t, root, "")
		_ = info
		t.Skip("ancestor directory is a workspace; discovery legitimately succeeded")
	}
	assert.Contains(t, err.Error(), "no workspace found")
}

func TestDiscover_DetectsSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"x"}`)
	writeFile(t, root, ".aictx/eslint-rules.json", `{}`)
	writeFile(t, root, ".github/instructions/user-overrides.md", "My rules.\n")

	info, err := Discover(root)
	require.NoError(t, err)
	assert.True(t, info.HasESLintRules)
	assert.True(t, info.HasUserOverrides)
	assert.False(t, info.HasPrettier)
}

func TestFrameworkSignals(t *testing.T) {
	info := &Info{Dependencies: map[string]string{
		"@angular/core": "^17.1.0",
		"jest":          "~29.7.0",
		"lodash":        "^4.17.21",
	}}

	signals := FrameworkSignals(info)
	require.Len(t, signals, 2)

	// Sorted by name.
	assert.Equal(t, "angular", signals[0].Name)
	assert.Equal(t, "17.1.0", signals[0].Version)
	assert.Equal(t, []string{"standalone", "signals", "control-flow"}, signals[0].Features)
	assert.Equal(t, "jest", signals[1].Name)
	assert.Equal(t, "29.7.0", signals[1].Version)
}

func TestFrameworkSignals_OldAngularHasFewerFeatures(t *testing.T) {
	info := &Info{Dependencies: map[string]string{"@angular/core": "15.2.0"}}
	signals := FrameworkSignals(info)
	require.Len(t, signals, 1)
	assert.Equal(t, []string{"standalone"}, signals[0].Features)
}

func TestFindConfigFiles_HonorsGitignoreAndSkipsNodeModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".prettierrc", "{}")
	writeFile(t, root, "packages/app/.eslintrc.json", "{}")
	writeFile(t, root, "node_modules/dep/.eslintrc.json", "{}")
	writeFile(t, root, "build/.prettierrc", "{}")
	writeFile(t, root, ".gitignore", "build/\n")

	found, err := FindConfigFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".prettierrc", "packages/app/.eslintrc.json"}, found)
}

func TestAcquireLock_MutualExclusion(t *testing.T) {
	root := t.TempDir()

	release, err := AcquireLock(root)
	require.NoError(t, err)

	// Second acquisition by this same live process is rejected.
	_, err = AcquireLock(root)
	var busy *types.ConcurrentGenerationError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, os.Getpid(), busy.HolderPID)

	release()

	// Released lock can be re-acquired.
	release2, err := AcquireLock(root)
	require.NoError(t, err)
	release2()
}

func TestAcquireLock_ReclaimsStaleLock(t *testing.T) {
	root := t.TempDir()
	hostname, err := os.Hostname()
	require.NoError(t, err)

	// A lock held by a PID that cannot be running anymore.
	writeFile(t, root, LockPath, `{"pid": 99999999, "hostname": "`+hostname+`", "started_at": "2026-01-01T00:00:00Z"}`)

	release, err := AcquireLock(root)
	require.NoError(t, err)
	release()
}
