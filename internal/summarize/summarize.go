package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyText is returned when there is nothing to summarize.
var ErrEmptyText = errors.New("text to summarize is empty")

// Summarizer condenses a transcript into a few key points.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Close() error
}

// summarization service provider
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

const (
	DefaultKeyPoints   = 3
	DefaultTemperature = 0.3
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 300
)

// ParseProvider maps a config value to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported summarize provider: %s", s)
	}
}

type Options struct {
	APIKey    string
	BaseURL   string // OpenAI-compatible endpoint such as Groq
	Model     string
	KeyPoints int
	MaxTokens int64
}

func (o Options) keyPoints() int {
	if o.KeyPoints > 0 {
		return o.KeyPoints
	}
	return DefaultKeyPoints
}

func (o Options) maxTokens() int64 {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return DefaultMaxTokens
}

// creates Summarizer based on provider
func Factory(ctx context.Context, provider Provider, opts Options) (Summarizer, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicSummarizer(opts)
	case ProviderOpenAI:
		return NewOpenAISummarizer(opts)
	case ProviderGemini:
		return NewGeminiSummarizer(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported summarize provider: %s", provider)
	}
}

// SystemPrompt frames the model as a concise summarizer.
func SystemPrompt(opts Options) string {
	return fmt.Sprintf(
		"You are an expert at summarizing text concisely. Summarize the essential content as %d key points. "+
			"Answer in the language of the text.",
		opts.keyPoints(),
	)
}

// BuildPrompt creates the user message for LLM providers.
func BuildPrompt(opts Options, text string) string {
	return fmt.Sprintf("Summarize the following text in %d key points:\n\n%s", opts.keyPoints(), text)
}

func prepareText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func finishSummary(provider Provider, summary string) (string, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("no text in %s response", provider)
	}
	return summary, nil
}
