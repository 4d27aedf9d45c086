package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/config"
	"github.com/mgpai22/voxserve/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger

	configOnce sync.Once
	configErr  error
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "voxserve",
	Short: "Speech-to-text API server and subtitle toolkit",
	Long: `Voxserve accepts audio over a small REST API, hands it to a speech-recognition
provider, and returns the transcript as JSON, text, SRT, or WebVTT.

The same pipeline is available locally through the transcribe command, along
with subtitle conversion, audio extraction, summaries, and usage accounting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)
		if cmd.Annotations["skipConfigLoad"] == "true" {
			return nil
		}
		_, err := loadConfig()
		return err
	},
}

// loadConfig reads the configuration once per process. Commands that never
// touch providers or the data directory skip it through the skipConfigLoad
// annotation.
func loadConfig() (*config.Config, error) {
	configOnce.Do(func() {
		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			configErr = fmt.Errorf("load config: %w", err)
			return
		}
		cfg = loaded

		if !verbose {
			configured, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				configErr = fmt.Errorf("build logger: %w", err)
				return
			}
			logger = configured
		}
		logger.Debugw("configuration loaded", "path", path, "exists", exists)
	})
	return cfg, configErr
}

// Execute runs the root command, cancelling its context on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Configuration file path (default ~/.config/voxserve/config.toml)")
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, ko-KR)")
}
