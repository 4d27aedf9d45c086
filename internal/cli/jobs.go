package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/store"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job_id]",
	Short: "List recent transcription jobs or show one",
	Long: `List the transcription jobs the server has recorded, newest first, or show a
single job by id. The id is returned to API clients in the
X-Transcription-Id header.

Examples:
  voxserve jobs
  voxserve jobs --limit 50
  voxserve jobs 0b6f3c0e-6a55-4c55-9d1c-2f8a2f1c3f0e`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().Int("limit", 20, "Maximum number of jobs to list")
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := store.Open(c)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	var jobs []*store.Job
	if len(args) == 1 {
		job, err := st.GetJob(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("job %s not found", args[0])
		}
		if err != nil {
			return err
		}
		jobs = []*store.Job{job}
	} else {
		jobs, err = st.ListJobs(ctx, limit)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No transcription jobs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, jobRow(job))
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "File", "Status", "Format", "Language", "Seconds", "Created", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func jobRow(job *store.Job) []string {
	language := job.Language
	if language == "" {
		language = "-"
	}
	return []string{
		job.ID,
		job.Filename,
		string(job.Status),
		job.ResponseFormat,
		language,
		fmt.Sprintf("%.1f", job.DurationSeconds),
		formatTime(job.CreatedAt),
		truncate(job.Error, 60),
	}
}

func truncate(s string, width int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= width {
		return string(runes)
	}
	return string(runes[:width-3]) + "..."
}
