package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/voxserve/internal/config"
	"github.com/mgpai22/voxserve/internal/summarize"
	"github.com/mgpai22/voxserve/internal/transcribe"
)

// provider settings after command-line overrides
type engineSettings struct {
	Provider string
	Options  transcribe.Options
}

func engineSettingsFrom(c *config.Config) engineSettings {
	t := c.Transcription
	return engineSettings{
		Provider: t.Provider,
		Options: transcribe.Options{
			APIKey:   t.APIKey,
			BaseURL:  t.BaseURL,
			Model:    t.Model,
			Language: t.Language,
			Prompt:   t.Prompt,
		},
	}
}

func newEngine(ctx context.Context, settings engineSettings) (transcribe.Engine, error) {
	provider, err := transcribe.ParseProvider(settings.Provider)
	if err != nil {
		return nil, err
	}
	if settings.Options.APIKey == "" {
		return nil, fmt.Errorf(
			"an API key is required for the %s provider: set transcription.api_key, use --api-key, or export the provider's API key variable",
			provider,
		)
	}
	engine, err := transcribe.Factory(ctx, provider, settings.Options)
	if err != nil {
		return nil, fmt.Errorf("create %s engine: %w", provider, err)
	}
	return engine, nil
}

// newSummarizer returns nil when no summarize provider is configured.
func newSummarizer(ctx context.Context, c *config.Config) (summarize.Summarizer, error) {
	if c.Summarize.Provider == "" {
		return nil, nil
	}
	provider, err := summarize.ParseProvider(c.Summarize.Provider)
	if err != nil {
		return nil, err
	}
	s, err := summarize.Factory(ctx, provider, summarize.Options{
		APIKey:  c.Summarize.APIKey,
		BaseURL: c.Summarize.BaseURL,
		Model:   c.Summarize.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s summarizer: %w", provider, err)
	}
	return s, nil
}

// swaps the input's extension, e.g. talk.mp4 -> talk.srt
func defaultOutputPath(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
