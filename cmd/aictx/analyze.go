package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/workspace"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Inspect the workspace without writing anything",
	Long: `Show what generation would be based on: the workspace root, detected
frameworks, configuration sources, and any existing generated documents.`,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("\n%s\n", cyan("=== Workspace ==="))
		fmt.Printf("Root:    %s\n", s.Info.Root)
		if s.Info.PackageName != "" {
			fmt.Printf("Package: %s\n", s.Info.PackageName)
		}

		signals := workspace.FrameworkSignals(s.Info)
		fmt.Printf("\n%s\n", cyan("=== Frameworks ==="))
		if len(signals) == 0 {
			fmt.Println(gray("none detected"))
		}
		for _, sig := range signals {
			line := sig.Name
			if sig.Version != "" {
				line += " " + sig.Version
			}
			fmt.Printf("  %s %s", green("✓"), line)
			for _, f := range sig.Features {
				fmt.Printf("  %s", gray(f))
			}
			fmt.Println()
		}

		fmt.Printf("\n%s\n", cyan("=== Configuration sources ==="))
		printSource("ESLint rules", s.Info.HasESLintRules)
		printSource("Prettier config", s.Info.HasPrettier)
		printSource("User overrides", s.Info.HasUserOverrides)

		files, err := workspace.FindConfigFiles(s.Info.Root)
		if err == nil && len(files) > 0 {
			fmt.Printf("\n%s\n", cyan("=== Config files ==="))
			for _, f := range files {
				fmt.Printf("  %s\n", f)
			}
		}

		state, err := s.Orch.Analyze()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s\n", cyan("=== Generated output ==="))
		if !state.Exists {
			fmt.Println(gray("none (a fresh generate will not prompt)"))
			return
		}
		for _, f := range state.Files {
			fmt.Printf("  %s\n", f)
		}
		if state.HasUserOverrides {
			fmt.Printf("\n%s user overrides present; they always take precedence\n", yellow("!"))
		}
	},
}

func printSource(name string, present bool) {
	if present {
		fmt.Printf("  %s %s\n", color.GreenString("✓"), name)
		return
	}
	fmt.Printf("  %s %s\n", color.New(color.FgHiBlack).Sprint("−"), name)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
