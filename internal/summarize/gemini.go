package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// implements Summarizer using Google Gemini
type GeminiSummarizer struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiSummarizer(ctx context.Context, opts Options) (*GeminiSummarizer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiSummarizer{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text, err := prepareText(text)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(BuildPrompt(s.options, text), genai.RoleUser),
	}
	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, s.generateConfig())
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}

	return finishSummary(ProviderGemini, geminiText(result))
}

func (s *GeminiSummarizer) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(s.options), genai.RoleUser),
		Temperature:       genai.Ptr[float32](DefaultTemperature),
		TopP:              genai.Ptr[float32](DefaultTopP),
		MaxOutputTokens:   int32(s.options.maxTokens()),
		// thinking tokens would count against the small output budget
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
}

// text of the first candidate that has any
func geminiText(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

func (s *GeminiSummarizer) Close() error {
	return nil
}
