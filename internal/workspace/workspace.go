// Package workspace discovers the workspace root, its package metadata, and
// which configuration sources are present. Detection stays at the
// file-existence and manifest level; source files are never inspected.
package workspace

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/parsers"
)

// Info describes a discovered workspace.
type Info struct {
	// Root is the absolute workspace root directory.
	Root string

	// PackageName is the "name" field of package.json, if present.
	PackageName string

	// Scripts maps package.json script names to commands.
	Scripts map[string]string

	// Dependencies merges dependencies and devDependencies: package name to
	// declared version range.
	Dependencies map[string]string

	// Presence of the configuration sources the parsers read.
	HasESLintRules   bool
	HasPrettier      bool
	HasUserOverrides bool
}

// packageJSON is the subset of package.json this tool reads.
type packageJSON struct {
	Name            string            `json:"name"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Discover walks up from startDir to the nearest directory containing
// package.json or .git and reads its metadata.
func Discover(startDir string) (*Info, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("invalid start directory: %w", err)
	}

	root := abs
	for {
		if fileExists(filepath.Join(root, "package.json")) || dirExists(filepath.Join(root, ".git")) {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return nil, fmt.Errorf("no workspace found above %s (looked for package.json or .git)", abs)
		}
		root = parent
	}

	info := &Info{
		Root:         root,
		Scripts:      map[string]string{},
		Dependencies: map[string]string{},
	}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("malformed package.json: %w", err)
		}
		info.PackageName = pkg.Name
		if pkg.Scripts != nil {
			info.Scripts = pkg.Scripts
		}
		for name, ver := range pkg.Dependencies {
			info.Dependencies[name] = ver
		}
		for name, ver := range pkg.DevDependencies {
			info.Dependencies[name] = ver
		}
	}

	info.HasESLintRules = fileExists(filepath.Join(root, filepath.FromSlash(parsers.ESLintRulesPath)))
	info.HasPrettier = hasPrettierConfig(root, info.Dependencies)
	info.HasUserOverrides = fileExists(filepath.Join(root, filepath.FromSlash(parsers.UserOverridePath)))

	return info, nil
}

// TestCommand returns the workspace's test invocation: the package.json
// "test" script run through npm, or empty if none is declared.
func (i *Info) TestCommand() string {
	if _, ok := i.Scripts["test"]; ok {
		return "npm test"
	}
	return ""
}

func hasPrettierConfig(root string, deps map[string]string) bool {
	for _, name := range []string{".prettierrc", ".prettierrc.json", ".prettierrc.yaml", ".prettierrc.yml"} {
		if fileExists(filepath.Join(root, name)) {
			return true
		}
	}
	_, ok := deps["prettier"]
	return ok
}

// FindConfigFiles lists lint/formatter configuration files under root for
// diagnostics, honoring .gitignore and skipping node_modules and .git.
// Paths are workspace-relative, sorted.
func FindConfigFiles(root string) ([]string, error) {
	var ignore *gitignore.GitIgnore
	if fileExists(filepath.Join(root, ".gitignore")) {
		compiled, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		if err != nil {
			return nil, fmt.Errorf("failed to compile .gitignore: %w", err)
		}
		ignore = compiled
	}

	interesting := map[string]bool{
		".eslintrc":         true,
		".eslintrc.json":    true,
		".eslintrc.js":      true,
		".eslintrc.cjs":     true,
		"eslint.config.js":  true,
		"eslint.config.mjs": true,
		".prettierrc":       true,
		".prettierrc.json":  true,
		".prettierrc.yaml":  true,
		".prettierrc.yml":   true,
		".prettierignore":   true,
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			base := d.Name()
			if base == "node_modules" || base == ".git" {
				return filepath.SkipDir
			}
			if ignore != nil && rel != "." && ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !interesting[d.Name()] {
			return nil
		}
		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}

	sort.Strings(found)
	return found, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func dirExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// normalizeVersionRange strips range operators from a declared dependency
// version ("^17.1.0" -> "17.1.0"). Best effort; unparsable ranges pass
// through unchanged.
func normalizeVersionRange(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "^~>=< ")
	if i := strings.IndexAny(v, " |"); i >= 0 {
		v = v[:i]
	}
	return v
}
