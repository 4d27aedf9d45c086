package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mgpai22/voxserve/internal/audio"
	"github.com/mgpai22/voxserve/internal/subtitle"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Engine using the OpenAI Audio API or any server speaking it
type OpenAIEngine struct {
	client   openai.Client
	provider Provider
	model    string
	options  Options
}

// segment from OpenAI Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAIEngine(provider Provider, opts Options) (*OpenAIEngine, error) {
	clientOpts := []option.RequestOption{}

	switch provider {
	case ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("API key is required")
		}
	case ProviderWhisper:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("base URL is required for the whisper provider")
		}
	default:
		return nil, fmt.Errorf("unsupported provider for OpenAI engine: %s", provider)
	}

	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	} else {
		// local whisper servers ignore auth but the client insists on a key
		clientOpts = append(clientOpts, option.WithAPIKey("none"))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAIEngine{
		client:   client,
		provider: provider,
		model:    model,
		options:  opts,
	}, nil
}

// transcribes single audio file
func (e *OpenAIEngine) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var (
		rawJSON  string
		fallback string
	)
	if e.options.Translate {
		rawJSON, fallback, err = e.translate(ctx, file)
	} else {
		rawJSON, fallback, err = e.transcribe(ctx, file)
	}
	if err != nil {
		return nil, err
	}

	result, err := parseVerboseJSONResponse(rawJSON, 0)
	if err != nil {
		text := strings.TrimSpace(fallback)
		if text == "" {
			return nil, fmt.Errorf("transcription returned no text: %w", err)
		}
		result = &Result{Text: text}
	}

	if result.Duration == 0 {
		if d, err := audio.GetDuration(ctx, audioPath); err == nil {
			result.Duration = d
		}
	}
	if len(result.Segments) == 0 && result.Text != "" {
		result.Segments = []subtitle.Segment{{
			Start: 0,
			End:   result.Duration.Seconds(),
			Text:  result.Text,
		}}
	}

	switch {
	case e.options.Translate:
		result.Language = "en"
	case result.Language == "":
		result.Language = e.options.Language
	}

	return result, nil
}

func (e *OpenAIEngine) transcribe(
	ctx context.Context,
	file *os.File,
) (string, string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(e.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}

	if e.options.Language != "" {
		params.Language = openai.String(e.options.Language)
	}

	if e.options.Prompt != "" {
		params.Prompt = openai.String(e.options.Prompt)
	}

	resp, err := e.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", "", fmt.Errorf("transcription failed: %w", err)
	}

	return resp.RawJSON(), resp.Text, nil
}

func (e *OpenAIEngine) translate(
	ctx context.Context,
	file *os.File,
) (string, string, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(e.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}

	if e.options.Prompt != "" {
		params.Prompt = openai.String(e.options.Prompt)
	}

	resp, err := e.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return "", "", fmt.Errorf("translation failed: %w", err)
	}

	return resp.RawJSON(), resp.Text, nil
}

func parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration time.Duration,
) (*Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	dur := fallbackDuration
	if verboseResp.Duration > 0 {
		dur = secondsToDuration(verboseResp.Duration)
	}

	text := strings.TrimSpace(verboseResp.Text)

	if len(verboseResp.Segments) == 0 {
		if text == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		return &Result{
			Text: text,
			Segments: []subtitle.Segment{{
				Start: 0,
				End:   dur.Seconds(),
				Text:  text,
			}},
			Language: normalizeResponseLanguage(verboseResp.Language),
			Duration: dur,
		}, nil
	}

	segments := make([]subtitle.Segment, 0, len(verboseResp.Segments))
	for _, seg := range verboseResp.Segments {
		segText := strings.TrimSpace(seg.Text)
		if segText == "" {
			continue
		}
		segments = append(segments, subtitle.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  segText,
		})
	}

	if text == "" {
		text = joinSegmentText(segments)
	}

	return &Result{
		Text:     text,
		Segments: segments,
		Language: normalizeResponseLanguage(verboseResp.Language),
		Duration: dur,
	}, nil
}

// normalizeResponseLanguage maps a Whisper language field, which may be a
// code or an English name such as "english", to a base language code.
func normalizeResponseLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return ""
	}
	if code, ok := whisperLanguageNames[lang]; ok {
		return code
	}
	if code, err := NormalizeLanguage(lang); err == nil {
		return code
	}
	return lang
}

// names Whisper reports in verbose_json for the most common languages
var whisperLanguageNames = map[string]string{
	"english":    "en",
	"korean":     "ko",
	"japanese":   "ja",
	"chinese":    "zh",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"turkish":    "tr",
	"vietnamese": "vi",
	"indonesian": "id",
	"thai":       "th",
	"polish":     "pl",
	"ukrainian":  "uk",
}

func (e *OpenAIEngine) Close() error {
	return nil
}
