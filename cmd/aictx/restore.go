package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore instruction documents from a backup",
	Long: `Replace the current generated instruction documents with the verbatim
contents of a backup. Files that exist now but are not part of the backup
are removed, so the workspace matches the backed-up state exactly.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		res := s.Orch.Restore(context.Background(), args[0])
		printResult(res)
		if res.Kind == types.ResultFailed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
