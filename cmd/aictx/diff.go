package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/gitdiff"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Capture uncommitted git changes to a markdown file",
	Long: `Capture the current git status plus unstaged and staged diffs into
.aictx/ai-diff.md, in a form suitable for pasting into an AI assistant.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		capturer, err := gitdiff.NewCapturer(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		path, err := capturer.Write(ctx, s.Info.Root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Captured git changes to %s\n", color.GreenString("✓"), path)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
