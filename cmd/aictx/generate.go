package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/gitdiff"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

var (
	generateDecision string
	generateBackupID string
	generateDryRun   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate AI assistant instruction documents",
	Long: `Analyze the workspace configuration and generate prioritized instruction
documents under .github/.

If generated documents already exist, you choose what happens:
  update   back up the current documents, then regenerate
  restore  roll back to a previous backup (see 'aictx backups')
  remove   back up and delete the generated documents
  cancel   do nothing

Without --decision the choice is made interactively.

Example:
  aictx generate
  aictx generate --decision=update
  aictx generate --decision=restore --backup-id=1754042400000-1a2b3c4d
  aictx generate --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		if generateDryRun {
			if err := runDryRun(ctx, s); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		state, err := s.Orch.Analyze()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		decision := types.Decision(generateDecision)
		if state.Exists && decision == "" {
			decision, err = promptDecision(state)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if decision == "" {
			decision = types.DecisionUpdate
		}
		if !decision.Valid() {
			fmt.Fprintf(os.Stderr, "Error: unknown decision %q (want update, restore, remove, or cancel)\n", decision)
			os.Exit(1)
		}

		backupID := generateBackupID
		if decision == types.DecisionRestore && backupID == "" {
			backupID, err = promptBackupID(ctx, s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		res := s.Orch.Generate(ctx, decision, backupID)
		printResult(res)
		if res.Kind == types.ResultFailed {
			os.Exit(1)
		}
	},
}

// promptDecision asks the user what to do with existing output.
func promptDecision(state types.ExistingOutputState) (types.Decision, error) {
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s Found %d existing instruction document(s):\n", yellow("!"), len(state.Files))
	for _, f := range state.Files {
		fmt.Printf("  %s\n", gray(f))
	}
	fmt.Println()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "What now? [update/restore/remove/cancel] ",
		InterruptPrompt: "^C",
		EOFPrompt:       "cancel",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create prompt: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return types.DecisionCancel, nil
		}
		if err != nil {
			return "", err
		}

		d := types.Decision(strings.ToLower(strings.TrimSpace(line)))
		if d == "" {
			d = types.DecisionUpdate
		}
		if d.Valid() {
			return d, nil
		}
		fmt.Println("Please answer update, restore, remove, or cancel.")
	}
}

// promptBackupID lets the user pick a backup for restore.
func promptBackupID(ctx context.Context, s *session) (string, error) {
	backups, err := s.Orch.ListBackups(ctx)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups available to restore")
	}

	fmt.Println("\nAvailable backups (most recent first):")
	for i, b := range backups {
		fmt.Printf("  [%d] %s  %s  %s\n", i+1, b.ID, b.Timestamp.Format("2006-01-02 15:04:05"), b.Label)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Restore which? [1] ",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err == readline.ErrInterrupt || err == io.EOF {
		return "", fmt.Errorf("restore aborted")
	}
	if err != nil {
		return "", err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return backups[0].ID, nil
	}
	var n int
	if _, err := fmt.Sscanf(line, "%d", &n); err == nil && n >= 1 && n <= len(backups) {
		return backups[n-1].ID, nil
	}
	return line, nil // treat input as a literal backup id
}

// runDryRun renders without writing and shows per-file diffs.
func runDryRun(ctx context.Context, s *session) error {
	rendered, warnings, err := s.Orch.Preview(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	paths := make([]string, 0, len(rendered))
	for p := range rendered {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fmt.Printf("\n%s\n\n", cyan("=== Dry run: no files will be written ==="))
	for _, path := range paths {
		content := rendered[path]
		current := s.Orch.ReadLive(path)
		diff := gitdiff.Unified(current, content)
		if diff == "" {
			fmt.Printf("%s %s\n", gray("unchanged"), path)
			continue
		}
		fmt.Printf("%s %s\n%s\n", cyan("would write"), path, diff)
	}
	printWarnings(warnings)
	return nil
}

// printResult reports the run outcome in the taxonomy the orchestrator uses.
func printResult(res types.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	switch res.Kind {
	case types.ResultCancelled:
		fmt.Printf("\n%s Cancelled, nothing changed.\n", gray("○"))
		return
	case types.ResultFailed:
		fmt.Fprintf(os.Stderr, "\n%s %s failed at step %q: %v\n", red("✗"), res.Decision, res.Step, res.Err)
		return
	}

	fmt.Printf("\n%s %s complete\n", green("✓"), res.Decision)
	if res.BackupID != "" {
		fmt.Printf("  Backup:  %s\n", res.BackupID)
	}
	for _, f := range res.Written {
		fmt.Printf("  %s %s\n", green("wrote"), f)
	}
	for _, f := range res.Skipped {
		fmt.Printf("  %s %s\n", gray("unchanged"), f)
	}
	for _, c := range res.Conflicts {
		fmt.Printf("  %s dropped conflicting %s guidance: %s\n", yellow("!"), c.Concern, gray(c.DroppedContent))
	}
	printWarnings(res.Warnings)
}

func printWarnings(warnings []*types.ConfigSourceError) {
	if len(warnings) == 0 {
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Println()
	for _, w := range warnings {
		fmt.Printf("  %s %v\n", yellow("warning:"), w)
	}
}

func init() {
	generateCmd.Flags().StringVar(&generateDecision, "decision", "", "non-interactive decision when output exists (update/restore/remove/cancel)")
	generateCmd.Flags().StringVar(&generateBackupID, "backup-id", "", "backup id for --decision=restore")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "render and diff without writing")
	rootCmd.AddCommand(generateCmd)
}
