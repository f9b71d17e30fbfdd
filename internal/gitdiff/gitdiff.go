// Package gitdiff captures the workspace's git state in a markdown format
// an AI assistant can consume directly: status summary plus staged and
// unstaged diffs.
package gitdiff

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// OutputPath is where the captured report is written, relative to the
// workspace root.
const OutputPath = ".aictx/ai-diff.md"

// Status summarizes `git status --porcelain`.
type Status struct {
	Modified   []string
	Untracked  []string
	Deleted    []string
	Added      []string
	Renamed    []string
	HasChanges bool
}

// Report is one captured git state.
type Report struct {
	Status   *Status
	Unstaged string
	Staged   string
}

// Capturer runs git via the CLI.
type Capturer struct {
	gitPath string
}

// NewCapturer verifies git is available and returns a capturer.
func NewCapturer(ctx context.Context) (*Capturer, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}
	return &Capturer{gitPath: gitPath}, nil
}

// GetStatus returns the parsed porcelain status of the repository.
func (c *Capturer) GetStatus(ctx context.Context, repoPath string) (*Status, error) {
	cmd := exec.CommandContext(ctx, c.gitPath, "-C", repoPath, "status", "--porcelain")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git status failed in %s: %w", repoPath, err)
	}

	status := &Status{}
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 3 {
			continue
		}
		code := line[0:2]
		path := line[3:]

		switch {
		case strings.HasPrefix(code, "??"):
			status.Untracked = append(status.Untracked, path)
		case strings.HasPrefix(code, "A "), strings.HasPrefix(code, "AM"):
			status.Added = append(status.Added, path)
		case strings.HasPrefix(code, "D "), strings.HasPrefix(code, " D"):
			status.Deleted = append(status.Deleted, path)
		case strings.HasPrefix(code, "R "):
			status.Renamed = append(status.Renamed, path)
		default:
			status.Modified = append(status.Modified, path)
		}
		status.HasChanges = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse git status: %w", err)
	}
	return status, nil
}

// Capture gathers status plus unstaged and staged diffs.
func (c *Capturer) Capture(ctx context.Context, repoPath string) (*Report, error) {
	status, err := c.GetStatus(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	unstaged, err := c.diff(ctx, repoPath, false)
	if err != nil {
		return nil, err
	}
	staged, err := c.diff(ctx, repoPath, true)
	if err != nil {
		return nil, err
	}

	return &Report{Status: status, Unstaged: unstaged, Staged: staged}, nil
}

// Write captures the git state and writes the markdown report to OutputPath.
// Returns the workspace-relative path written.
func (c *Capturer) Write(ctx context.Context, repoPath string) (string, error) {
	report, err := c.Capture(ctx, repoPath)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(repoPath, filepath.FromSlash(OutputPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(report.Markdown()), 0644); err != nil {
		return "", fmt.Errorf("failed to write diff report: %w", err)
	}
	return OutputPath, nil
}

func (c *Capturer) diff(ctx context.Context, repoPath string, staged bool) (string, error) {
	args := []string{"-C", repoPath, "diff"}
	if staged {
		args = append(args, "--cached")
	}
	cmd := exec.CommandContext(ctx, c.gitPath, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff failed in %s: %w", repoPath, err)
	}
	return string(output), nil
}

// Markdown renders the report for assistant consumption.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Git Changes\n\n")

	if !r.Status.HasChanges {
		b.WriteString("Working tree clean: no uncommitted changes.\n")
		return b.String()
	}

	b.WriteString("## Status\n\n")
	writeStatusSection(&b, "Modified", r.Status.Modified)
	writeStatusSection(&b, "Added", r.Status.Added)
	writeStatusSection(&b, "Deleted", r.Status.Deleted)
	writeStatusSection(&b, "Renamed", r.Status.Renamed)
	writeStatusSection(&b, "Untracked", r.Status.Untracked)

	if strings.TrimSpace(r.Staged) != "" {
		b.WriteString("\n## Staged changes\n\n```diff\n")
		b.WriteString(r.Staged)
		b.WriteString("```\n")
	}
	if strings.TrimSpace(r.Unstaged) != "" {
		b.WriteString("\n## Unstaged changes\n\n```diff\n")
		b.WriteString(r.Unstaged)
		b.WriteString("```\n")
	}
	return b.String()
}

func writeStatusSection(b *strings.Builder, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	for _, p := range paths {
		fmt.Fprintf(b, "- %s: %s\n", strings.ToLower(title), p)
	}
}
