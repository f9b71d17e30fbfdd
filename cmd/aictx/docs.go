package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/workspace"
)

var docsForce bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Fetch official framework docs into the local cache",
	Long: `Download official documentation snippets for the frameworks detected in
this workspace and cache them under .aictx/cache/docs/. Cached docs are
folded into the generated instructions at official-docs priority.

Without --force, frameworks whose cache is still fresh are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		if !s.Cfg.DocsEnabled {
			fmt.Fprintf(os.Stderr, "Error: docs fetching is disabled (docs_enabled: false in .aictx/config.yaml)\n")
			os.Exit(1)
		}

		signals := workspace.FrameworkSignals(s.Info)
		if len(signals) == 0 {
			fmt.Println("No frameworks detected; nothing to fetch.")
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		failures := 0
		for _, sig := range signals {
			if !s.Docs.Known(sig.Name) {
				fmt.Printf("  %s %s (no known docs source)\n", gray("−"), sig.Name)
				continue
			}
			if !docsForce && s.Docs.Fresh(sig.Name) {
				fmt.Printf("  %s %s (cache fresh)\n", gray("−"), sig.Name)
				continue
			}
			if err := s.Docs.Fetch(ctx, sig.Name); err != nil {
				fmt.Printf("  %s %s: %v\n", red("✗"), sig.Name, err)
				failures++
				continue
			}
			fmt.Printf("  %s %s\n", green("✓"), sig.Name)
		}

		if failures > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	docsCmd.Flags().BoolVar(&docsForce, "force", false, "refetch even when the cache is fresh")
	rootCmd.AddCommand(docsCmd)
}
