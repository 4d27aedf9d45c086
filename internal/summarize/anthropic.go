package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Summarizer using Anthropic Claude
type AnthropicSummarizer struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicSummarizer(opts Options) (*AnthropicSummarizer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicSummarizer{
		client:  anthropic.NewClient(clientOpts...),
		model:   model,
		options: opts,
	}, nil
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text, err := prepareText(text)
	if err != nil {
		return "", err
	}

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       s.model,
		MaxTokens:   s.options.maxTokens(),
		Temperature: anthropic.Float(DefaultTemperature),
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt(s.options)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(s.options, text))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}

	return finishSummary(ProviderAnthropic, anthropicText(message))
}

func anthropicText(message *anthropic.Message) string {
	if message == nil {
		return ""
	}
	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

func (s *AnthropicSummarizer) Close() error {
	return nil
}
