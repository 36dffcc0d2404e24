package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"podsink/internal/journal"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := loadAttempts(cctx, cmd, limit, false)
			if err != nil {
				return err
			}
			printAttempts(cmd, attempts, "No download attempts recorded yet.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum attempts to show")
	return cmd
}

func newFailuresCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Show recent failed download attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := loadAttempts(cctx, cmd, limit, true)
			if err != nil {
				return err
			}
			printAttempts(cmd, attempts, "No failures recorded.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum attempts to show")
	return cmd
}

func loadAttempts(cctx *commandContext, cmd *cobra.Command, limit int, failuresOnly bool) ([]journal.Attempt, error) {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := journal.Open(cfg.Paths.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open attempt journal: %w", err)
	}
	defer store.Close()

	if failuresOnly {
		return store.Failures(cmd.Context(), limit)
	}
	return store.Recent(cmd.Context(), limit)
}

func printAttempts(cmd *cobra.Command, attempts []journal.Attempt, emptyMessage string) {
	out := cmd.OutOrStdout()
	if len(attempts) == 0 {
		fmt.Fprintln(out, emptyMessage)
		return
	}

	rows := make([]table.Row, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, table.Row{
			a.CreatedAt.Local().Format(time.DateTime),
			a.VideoID,
			a.ChannelID,
			truncateCell(a.Title, 40),
			a.Outcome,
			truncateCell(a.Detail, 60),
		})
	}
	renderTable(out, table.Row{"When", "Video", "Channel", "Title", "Outcome", "Detail"}, rows)
}

func truncateCell(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max-1] + "…"
}
