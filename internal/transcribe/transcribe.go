package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/voxserve/internal/subtitle"
)

// transcription result
type Result struct {
	Text     string
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// Engine turns an audio file into a transcription. Engines are built once at
// startup and shared; implementations must be safe for concurrent use.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
	Close() error
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI  Provider = "openai"
	ProviderWhisper Provider = "whisper"
	ProviderGemini  Provider = "gemini"
)

// ParseProvider maps a config value to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderWhisper, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", s)
	}
}

// transcription options
type Options struct {
	APIKey    string
	BaseURL   string // OpenAI-compatible endpoint, required for whisper
	Model     string
	Language  string // BCP 47 tag of the spoken language, empty to auto-detect
	Prompt    string
	Translate bool // translate speech to English (openai and whisper only)
}

// creates an engine based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	opts Options,
) (Engine, error) {
	lang, err := NormalizeLanguage(opts.Language)
	if err != nil {
		return nil, err
	}
	opts.Language = lang

	switch provider {
	case ProviderOpenAI, ProviderWhisper:
		return NewOpenAIEngine(provider, opts)
	case ProviderGemini:
		return NewGeminiEngine(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func joinSegmentText(segments []subtitle.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
