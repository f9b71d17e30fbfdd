package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/testrunner"
)

var testCommandFlag string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the workspace test suite and capture its output",
	Long: `Run the workspace's test command and write a cleaned, ANSI-free report to
.aictx/test-output.md. The command comes from --command, then the
test_command config setting, then the package.json "test" script.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		command := testCommandFlag
		if command == "" {
			command = s.Cfg.TestCommand
		}
		if command == "" {
			command = s.Info.TestCommand()
		}
		if command == "" {
			fmt.Fprintf(os.Stderr, "Error: no test command configured (no --command, no test_command in .aictx/config.yaml, no \"test\" script in package.json)\n")
			os.Exit(1)
		}

		fmt.Printf("Running: %s\n\n", command)

		runner := testrunner.NewRunner(s.Info.Root)
		path, report, err := runner.Write(ctx, command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if report.Passed {
			fmt.Printf("%s Tests passed in %s\n", color.GreenString("✓"), report.Duration.Round(10*time.Millisecond))
		} else {
			fmt.Printf("%s Tests failed in %s\n", color.RedString("✗"), report.Duration.Round(10*time.Millisecond))
		}
		fmt.Printf("Report written to %s\n", path)

		if !report.Passed {
			os.Exit(1)
		}
	},
}

func init() {
	testCmd.Flags().StringVar(&testCommandFlag, "command", "", "test command to run instead of the configured one")
	rootCmd.AddCommand(testCmd)
}
