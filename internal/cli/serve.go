package cli

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/server"
	"github.com/mgpai22/voxserve/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription API server",
	Long: `Run the HTTP API in the foreground until interrupted.

Only one server may own a data directory at a time; a second instance pointed
at the same data_dir exits immediately.

Examples:
  voxserve serve
  voxserve serve --bind 0.0.0.0:8000
  voxserve serve -c ./voxserve.toml -v`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("bind", "", "Listen address, overrides server.bind")
	serveCmd.Flags().Bool("no-usage", false, "Disable the usage ledger for this run")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := loadConfig()
	if err != nil {
		return err
	}

	bind, _ := cmd.Flags().GetString("bind")
	noUsage, _ := cmd.Flags().GetBool("no-usage")
	if bind == "" {
		bind = c.Server.Bind
	}

	if err := c.EnsureDirectories(); err != nil {
		return err
	}

	lock := flock.New(c.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire server lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another voxserve server is already using %s", c.Paths.DataDir)
	}
	defer func() { _ = lock.Unlock() }()

	st, err := store.Open(c)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	settings := engineSettingsFrom(c)
	engine, err := newEngine(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	summarizer, err := newSummarizer(ctx, c)
	if err != nil {
		return err
	}
	if summarizer != nil {
		defer func() { _ = summarizer.Close() }()
	}

	usage, err := st.CheckUsage(ctx)
	if err != nil {
		return fmt.Errorf("read usage: %w", err)
	}

	srv, err := server.New(server.Options{
		Engine:     engine,
		Summarizer: summarizer,
		Store:      st,
		Logger:     logger,
		Provider:   settings.Provider,
		Model:      settings.Options.Model,

		UsageEnabled: c.Usage.Enabled && !noUsage,
		Limits: store.Limits{
			LimitMinutes: usage.LimitMinutes,
			MaxMinutes:   usage.MaxMinutes,
		},
		MaxUploadBytes: c.MaxUploadBytes(),
		TempDir:        c.Paths.TempDir,
		AllowedOrigins: c.Server.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	logger.Infow("voxserve starting",
		"bind", bind,
		"provider", settings.Provider,
		"summarize", c.Summarize.Provider != "",
		"usage_enabled", c.Usage.Enabled && !noUsage,
		"database", st.Path(),
	)

	if err := srv.ListenAndServe(ctx, bind, c.ShutdownTimeout()); err != nil {
		return err
	}
	logger.Infow("voxserve stopped")
	return nil
}
