package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aictx",
	Short: "Generate AI assistant context from workspace configuration",
	Long: `aictx analyzes a workspace's lint, formatter, and framework configuration
and generates layered, prioritized instruction documents for AI coding
assistants, plus assistant-friendly captures of git diffs and test output.

Generated documents live under .github/ and are backed up before every
destructive change; user-authored overrides are never touched.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
