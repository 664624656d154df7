package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/gregory-lime/jacques-context-manager/internal/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show calibration store diagnostics",
	Long: "Summarize the calibration store: how many sessions are tracked,\n" +
		"how many have a learned factor, and the recent cross-session\n" +
		"average. The average is diagnostic only and never applied.",
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	stats := store.GetStats()
	sessions := store.Sessions()

	if flagJSON {
		return printJSON(struct {
			SessionCount        int     `json:"session_count"`
			CalibratedSessions  int     `json:"calibrated_sessions"`
			RecentAverageFactor float64 `json:"recent_average_factor"`
		}{stats.SessionCount, stats.CalibratedSessions, stats.RecentAverageFactor})
	}

	summary := cli.Table{
		Title:   "Calibration store",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Sessions tracked", cli.FormatNumber(int64(stats.SessionCount))},
			{"Sessions calibrated", cli.FormatNumber(int64(stats.CalibratedSessions))},
			{"Recent average factor", cli.FormatFactor(stats.RecentAverageFactor)},
		},
	}
	fmt.Println(cli.RenderTable(summary))

	if len(sessions) == 0 {
		return nil
	}

	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return sessions[ids[i]].UpdatedAt.After(sessions[ids[j]].UpdatedAt)
	})

	table := cli.Table{
		Title:   "Sessions",
		Headers: []string{"Session", "Factor", "Last estimate", "Last actual", "Updated"},
	}
	for _, id := range ids {
		rec := sessions[id]
		factor := "-"
		if rec.Calibrated() {
			factor = cli.FormatFactor(rec.Factor)
		}
		estimate := "-"
		if rec.LastEstimate != nil {
			estimate = cli.FormatTokens(*rec.LastEstimate)
		}
		actual := "-"
		if rec.LastActual != nil {
			actual = cli.FormatTokens(*rec.LastActual)
		}
		updated := "-"
		if !rec.UpdatedAt.IsZero() {
			updated = rec.UpdatedAt.Local().Format(time.DateTime)
		}
		table.Rows = append(table.Rows, []string{shortID(id), factor, estimate, actual, updated})
	}
	fmt.Println(cli.RenderTable(table))
	return nil
}

// shortID truncates long session ids for table display.
func shortID(id string) string {
	if len(id) > 16 {
		return id[:16] + "…"
	}
	return id
}
