package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mgpai22/voxserve/internal/audio"
	"github.com/mgpai22/voxserve/internal/subtitle"
	"google.golang.org/genai"
)

// implements Engine using Google Gemini
type GeminiEngine struct {
	client  *genai.Client
	model   string
	options Options
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

func NewGeminiEngine(ctx context.Context, opts Options) (*GeminiEngine, error) {
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

	return &GeminiEngine{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (e *GeminiEngine) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploadedFile, err := e.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}

	defer func() {
		// the request context may already be cancelled
		_, _ = e.client.Files.Delete(context.WithoutCancel(ctx), uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(buildTranscriptionPrompt(e.options)),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, err := parseTranscriptionResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	duration, _ := audio.GetDuration(ctx, audioPath)
	if duration == 0 && len(segments) > 0 {
		duration = secondsToDuration(segments[len(segments)-1].End)
	}

	return &Result{
		Text:     joinSegmentText(segments),
		Segments: segments,
		Language: e.options.Language,
		Duration: duration,
	}, nil
}

// creates the prompt for transcription
func buildTranscriptionPrompt(opts Options) string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if opts.Language != "" {
		sb.WriteString(fmt.Sprintf("The audio is in %s. ", languageName(opts.Language)))
	}

	if opts.Translate {
		sb.WriteString("Output the transcript in English. ")
	}

	if opts.Prompt != "" {
		sb.WriteString(opts.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// parses Gemini's response into segments
func parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]subtitle.Segment, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	responseText = cleanJSONResponse(responseText)

	transcriptSegments, err := extractTranscriptSegments(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	return toSubtitleSegments(transcriptSegments), nil
}

// converts model output into well-formed segments: negative times are
// clamped to zero, end never precedes start, and empty text is dropped.
func toSubtitleSegments(in []transcriptSegment) []subtitle.Segment {
	segments := make([]subtitle.Segment, 0, len(in))
	for _, ts := range in {
		text := strings.TrimSpace(ts.Text)
		if text == "" {
			continue
		}
		start := max(ts.Start, 0)
		end := max(ts.End, start)
		segments = append(segments, subtitle.Segment{
			Start: start,
			End:   end,
			Text:  text,
		})
	}
	return segments
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// finds the first JSON array of segments in free-form model output, either
// bare or wrapped in an object
func extractTranscriptSegments(text string) ([]transcriptSegment, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if segments, ok := tryExtractSegments(raw); ok {
			return segments, nil
		}
	}
	return nil, fmt.Errorf("no valid transcript JSON found in response")
}

func tryExtractSegments(raw json.RawMessage) ([]transcriptSegment, bool) {
	var segments []transcriptSegment
	if err := json.Unmarshal(raw, &segments); err == nil && validateSegments(segments) {
		return segments, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"segments", "transcript", "data"} {
		fieldRaw, exists := wrapper[key]
		if !exists {
			continue
		}
		var fieldSegments []transcriptSegment
		if err := json.Unmarshal(fieldRaw, &fieldSegments); err == nil && validateSegments(fieldSegments) {
			return fieldSegments, true
		}
	}

	for _, fieldRaw := range wrapper {
		var fieldSegments []transcriptSegment
		if err := json.Unmarshal(fieldRaw, &fieldSegments); err == nil && validateSegments(fieldSegments) {
			return fieldSegments, true
		}
	}

	return nil, false
}

// reports whether at least one segment carries any data
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Text != "" || s.Start != 0 || s.End != 0 {
			return true
		}
	}
	return false
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Close closes the Gemini client
func (e *GeminiEngine) Close() error {
	return nil
}
