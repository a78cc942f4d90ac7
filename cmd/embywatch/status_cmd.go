package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/embywatch/internal/snapshot"
)

var statusRunCount int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show snapshot stats and recent run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger("error") // keep output clean

		store, err := snapshot.Open(cfg.State.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		items, sources, err := store.Counts()
		if err != nil {
			return err
		}
		fmt.Printf("Snapshot: %s\n", cfg.State.Path)
		fmt.Printf("  items tracked:   %d\n", items)
		fmt.Printf("  sources tracked: %d\n", sources)

		runs, err := store.RecentRuns(statusRunCount)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("\nNo runs recorded yet.")
			return nil
		}

		fmt.Printf("\nLast %d run(s):\n", len(runs))
		for _, r := range runs {
			line := fmt.Sprintf("  %s  seen=%d detected=%d delivered=%d failed=%d  (%s)",
				r.StartedAt.Format(time.RFC3339),
				r.ItemsSeen, r.ChangesDetected, r.Delivered, r.Failed,
				r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			)
			if r.Error != "" {
				line += "  error: " + r.Error
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusRunCount, "runs", 10, "Number of recent runs to show")
	rootCmd.AddCommand(statusCmd)
}
