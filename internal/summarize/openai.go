package summarize

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Summarizer using OpenAI Chat Completions or any server speaking it
type OpenAISummarizer struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAISummarizer(opts Options) (*OpenAISummarizer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAISummarizer{
		client:  openai.NewClient(clientOpts...),
		model:   model,
		options: opts,
	}, nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text, err := prepareText(text)
	if err != nil {
		return "", err
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt(s.options)),
			openai.UserMessage(BuildPrompt(s.options, text)),
		},
		Model:               s.model,
		Temperature:         openai.Float(DefaultTemperature),
		TopP:                openai.Float(DefaultTopP),
		MaxCompletionTokens: openai.Int(s.options.maxTokens()),
	})
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}

	return finishSummary(ProviderOpenAI, openAIText(completion))
}

func openAIText(completion *openai.ChatCompletion) string {
	if completion == nil || len(completion.Choices) == 0 {
		return ""
	}
	return completion.Choices[0].Message.Content
}

func (s *OpenAISummarizer) Close() error {
	return nil
}
