package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkarlsen/shellguard/internal/config"
	"github.com/pkarlsen/shellguard/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently handled requests",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if cfg.UI.HistoryFile == "" {
		fmt.Fprintln(out, "History persistence is disabled.")
		return nil
	}

	store, err := history.Open(config.ExpandPath(cfg.UI.HistoryFile), cfg.UI.MaxHistory)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}

	entries := store.Recent(historyLimit)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return nil
	}

	for _, e := range entries {
		command := e.Command
		if command == "" {
			command = "(nothing executed)"
		}
		fmt.Fprintf(out, "%s  %-10s  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"), e.Outcome, command)
	}
	return nil
}
