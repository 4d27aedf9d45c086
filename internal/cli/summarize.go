package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/config"
	"github.com/mgpai22/voxserve/internal/subtitle"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text_file|-]",
	Short: "Summarize a transcript in a few key points",
	Long: `Summarize a plain-text transcript, or the cue text of an SRT or WebVTT
file, with the configured summarize provider. Pass "-" to read from stdin.

Examples:
  voxserve summarize notes.txt
  voxserve summarize lecture.srt --provider anthropic
  cat transcript.txt | voxserve summarize -`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().
		String("provider", "", "Summarize provider (anthropic, openai, gemini)")
	summarizeCmd.Flags().
		String("model", "", "Model name, overrides summarize.model")
	summarizeCmd.Flags().
		StringP("api-key", "k", "", "Provider API key, overrides the configured key")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := loadConfig()
	if err != nil {
		return err
	}

	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")

	scoped := *c
	if provider != "" && provider != scoped.Summarize.Provider {
		scoped.Summarize = config.Summarize{Provider: provider}
	}
	if scoped.Summarize.Provider == "" {
		return errors.New("no summarize provider configured: set summarize.provider or use --provider")
	}
	if apiKey != "" {
		scoped.Summarize.APIKey = apiKey
	}
	if scoped.Summarize.APIKey == "" {
		scoped.Summarize.APIKey = config.ProviderAPIKey(scoped.Summarize.Provider)
	}
	if model != "" {
		scoped.Summarize.Model = model
	}

	text, err := readSummarizeInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	summarizer, err := newSummarizer(ctx, &scoped)
	if err != nil {
		return err
	}
	defer func() { _ = summarizer.Close() }()

	logger.Infow("Summarizing text",
		"provider", scoped.Summarize.Provider,
		"characters", len(text),
	)

	summary, err := summarizer.Summarize(ctx, text)
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}

// readSummarizeInput returns the text to summarize. Subtitle files contribute
// their cue text only.
func readSummarizeInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	if _, err := subtitle.StyleFromPath(path); err == nil {
		segments, _, err := subtitle.Open(path)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(segments))
		for _, seg := range segments {
			if text := strings.TrimSpace(seg.Text); text != "" {
				lines = append(lines, text)
			}
		}
		return strings.Join(lines, "\n"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
