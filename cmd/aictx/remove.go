package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Back up and delete the generated instruction documents",
	Long: `Delete all generated instruction documents after taking a backup, so the
removal can be undone with 'aictx restore'. Hand-written files (including
the user override document) are never touched.`,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		res := s.Orch.Generate(context.Background(), types.DecisionRemove, "")
		printResult(res)
		if res.Kind == types.ResultFailed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
