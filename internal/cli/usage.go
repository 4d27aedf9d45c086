package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/store"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show or adjust the transcription minute ledger",
	Long: `Show how many transcription minutes have been used against the configured
limit, along with the most recent usage records.

--reset zeroes the running total and unlocks the ledger; the individual
records are kept. --limit changes the lockout threshold, which may not exceed
the hard maximum.

Examples:
  voxserve usage
  voxserve usage --recent 50
  voxserve usage --reset
  voxserve usage --limit 450`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().Bool("reset", false, "Reset the running total to zero")
	usageCmd.Flags().Float64("limit", 0, "Set the lockout threshold in minutes")
	usageCmd.Flags().Int("recent", 10, "Number of recent usage records to show")
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := loadConfig()
	if err != nil {
		return err
	}

	reset, _ := cmd.Flags().GetBool("reset")
	limit, _ := cmd.Flags().GetFloat64("limit")
	recent, _ := cmd.Flags().GetInt("recent")

	st, err := store.Open(c)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if reset {
		if err := st.ResetUsage(ctx); err != nil {
			return err
		}
		logger.Infow("usage reset")
	}
	if cmd.Flags().Changed("limit") {
		if err := st.SetLimit(ctx, limit); err != nil {
			return err
		}
		logger.Infow("usage limit updated", "limit_minutes", limit)
	}

	usage, err := st.CheckUsage(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Total", "Limit", "Max", "Remaining", "Status", "Updated"},
		[][]string{usageRow(usage)},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))
	if !c.Usage.Enabled {
		fmt.Fprintln(out, "Usage tracking is disabled in the configuration; the server does not record uploads.")
	}

	if recent <= 0 {
		return nil
	}
	logs, err := st.RecentUsage(ctx, recent)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Fprintln(out, "No usage recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, usageLogRow(entry))
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Minutes", "Source", "Recorded"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func usageRow(u store.Usage) []string {
	status := "available"
	switch {
	case u.IsLocked:
		status = "locked"
	case !u.IsAvailable:
		status = "unavailable"
	}
	return []string{
		formatMinutes(u.TotalMinutes),
		formatMinutes(u.LimitMinutes),
		formatMinutes(u.MaxMinutes),
		formatMinutes(u.RemainingMinutes),
		status,
		formatTime(u.UpdatedAt),
	}
}

func usageLogRow(entry store.UsageLog) []string {
	return []string{
		strconv.FormatInt(entry.ID, 10),
		formatMinutes(entry.DurationMinutes),
		entry.Source,
		formatTime(entry.CreatedAt),
	}
}

func formatMinutes(m float64) string {
	return strconv.FormatFloat(m, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
