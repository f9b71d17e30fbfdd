// Package testrunner executes the workspace's test command and captures its
// output in a markdown format an AI assistant can consume.
package testrunner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// OutputPath is where the captured report is written, relative to the
// workspace root.
const OutputPath = ".aictx/test-output.md"

// ansiEscape matches terminal color codes, which test runners emit freely
// and assistants only trip over.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Report is one captured test run.
type Report struct {
	Command  string
	Passed   bool
	Duration time.Duration
	Output   string
}

// Runner executes test commands in a workspace.
type Runner struct {
	workspaceRoot string
}

// NewRunner creates a runner for the workspace.
func NewRunner(workspaceRoot string) *Runner {
	return &Runner{workspaceRoot: workspaceRoot}
}

// Run executes command (a shell line, e.g. "npm test") and captures combined
// output. A failing test command is not an error: the failure is part of the
// report.
func (r *Runner) Run(ctx context.Context, command string) (*Report, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("no test command configured (set test_command or a package.json test script)")
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.workspaceRoot
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run %q: %w", command, err)
		}
	}

	return &Report{
		Command:  command,
		Passed:   err == nil,
		Duration: duration.Round(time.Millisecond),
		Output:   ansiEscape.ReplaceAllString(string(output), ""),
	}, nil
}

// Write runs the command and writes the markdown report to OutputPath.
// Returns the workspace-relative path written.
func (r *Runner) Write(ctx context.Context, command string) (string, *Report, error) {
	report, err := r.Run(ctx, command)
	if err != nil {
		return "", nil, err
	}

	dst := filepath.Join(r.workspaceRoot, filepath.FromSlash(OutputPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(report.Markdown()), 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write test report: %w", err)
	}
	return OutputPath, report, nil
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Test Results\n\n")
	status := "PASSED"
	if !r.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "- Command: `%s`\n", r.Command)
	fmt.Fprintf(&b, "- Status: %s\n", status)
	fmt.Fprintf(&b, "- Duration: %s\n", r.Duration)
	b.WriteString("\n## Output\n\n```\n")
	b.WriteString(strings.TrimRight(r.Output, "\n"))
	b.WriteString("\n```\n")
	return b.String()
}
