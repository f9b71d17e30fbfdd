package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List instruction document backups",
	Long: `List backups taken before update and remove operations, newest first.
Use 'aictx restore <id>' to roll back to one of them.`,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		backups, err := s.Orch.ListBackups(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		if len(backups) == 0 {
			fmt.Println(gray("No backups yet."))
			return
		}

		fmt.Printf("%d backup(s), newest first (keeping at most %d):\n\n", len(backups), s.Cfg.MaxBackups)
		for _, b := range backups {
			fmt.Printf("  %s  %s  %s\n", b.ID, b.Timestamp.Format("2006-01-02 15:04:05"), b.Label)
			fmt.Printf("      %s\n", gray(strings.Join(b.Files, ", ")))
		}
	},
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}
