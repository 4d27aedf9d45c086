package transcribe

import (
	"testing"
	"time"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	tests := []struct {
		name             string
		rawJSON          string
		fallbackDuration time.Duration
		wantCount        int
		wantErr          bool
	}{
		{
			name: "valid verbose_json with segments",
			rawJSON: `{
				"text": "Hello world. How are you today?",
				"segments": [
					{"start": 0.0, "end": 1.5, "text": "Hello world."},
					{"start": 1.5, "end": 3.0, "text": "How are you today?"}
				],
				"language": "en",
				"duration": 3.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        2,
		},
		{
			name: "verbose_json with no segments but has text",
			rawJSON: `{
				"text": "This is a transcription without segments.",
				"segments": [],
				"language": "en",
				"duration": 2.5
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "verbose_json with null segments",
			rawJSON: `{
				"text": "Transcription text only.",
				"segments": null,
				"language": "en",
				"duration": 1.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "verbose_json with empty text segments filtered out",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				],
				"language": "en",
				"duration": 2.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "verbose_json with whitespace-padded text",
			rawJSON: `{
				"text": "  Trimmed text  ",
				"segments": [
					{"start": 0.0, "end": 1.0, "text": "  Trimmed text  "}
				],
				"language": "en",
				"duration": 1.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name:             "empty response",
			rawJSON:          "",
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name:             "invalid JSON",
			rawJSON:          `{"text": "incomplete`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name: "no segments and no text",
			rawJSON: `{
				"text": "",
				"segments": [],
				"language": "en",
				"duration": 0
			}`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name: "real whisper response format",
			rawJSON: `{
				"task": "transcribe",
				"language": "english",
				"duration": 8.470000267028809,
				"text": "The stale smell of old beer lingers. It takes heat to bring out the odor.",
				"segments": [
					{
						"id": 0,
						"seek": 0,
						"start": 0.0,
						"end": 3.319999933242798,
						"text": "The stale smell of old beer lingers.",
						"tokens": [50364, 440, 23025, 7966, 295, 1331, 8388, 22949, 404, 13, 50530],
						"temperature": 0.0,
						"avg_logprob": -0.2860786020755768,
						"compression_ratio": 1.2363636493682861,
						"no_speech_prob": 0.009231
					},
					{
						"id": 1,
						"seek": 0,
						"start": 3.319999933242798,
						"end": 6.190000057220459,
						"text": "It takes heat to bring out the odor.",
						"tokens": [50530, 467, 2516, 3738, 281, 1565, 484, 264, 10602, 13, 50673],
						"temperature": 0.0,
						"avg_logprob": -0.2860786020755768,
						"compression_ratio": 1.2363636493682861,
						"no_speech_prob": 0.009231
					}
				]
			}`,
			fallbackDuration: 10 * time.Second,
			wantCount:        2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVerboseJSONResponse(
				tt.rawJSON,
				tt.fallbackDuration,
			)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Segments) != tt.wantCount {
				t.Errorf(
					"got %d segments, want %d",
					len(result.Segments),
					tt.wantCount,
				)
			}

			for i, seg := range result.Segments {
				if seg.Text == "" {
					t.Errorf("segment %d has empty text", i)
				}
			}
		})
	}
}

func TestParseVerboseJSONResponseTimestamps(t *testing.T) {
	rawJSON := `{
		"text": "Hello world. Goodbye.",
		"segments": [
			{"start": 1.5, "end": 3.0, "text": "Hello world."},
			{"start": 3.0, "end": 5.5, "text": "Goodbye."}
		],
		"language": "english",
		"duration": 5.5
	}`

	result, err := parseVerboseJSONResponse(rawJSON, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	segments := result.Segments
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}

	if segments[0].Start != 1.5 {
		t.Errorf("segment 0 start: got %v, want 1.5", segments[0].Start)
	}
	if segments[0].End != 3 {
		t.Errorf("segment 0 end: got %v, want 3", segments[0].End)
	}
	if segments[1].End != 5.5 {
		t.Errorf("segment 1 end: got %v, want 5.5", segments[1].End)
	}
	if segments[1].Text != "Goodbye." {
		t.Errorf(
			"segment 1 text: got %q, want %q",
			segments[1].Text,
			"Goodbye.",
		)
	}

	if result.Text != "Hello world. Goodbye." {
		t.Errorf("text: got %q", result.Text)
	}
	if result.Language != "en" {
		t.Errorf("language: got %q, want en", result.Language)
	}
	if result.Duration != 5500*time.Millisecond {
		t.Errorf("duration: got %v, want 5.5s", result.Duration)
	}
}

func TestParseVerboseJSONResponseBuildsTextFromSegments(t *testing.T) {
	rawJSON := `{
		"segments": [
			{"start": 0, "end": 1, "text": " one "},
			{"start": 1, "end": 2, "text": "two"}
		]
	}`

	result, err := parseVerboseJSONResponse(rawJSON, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "one two" {
		t.Errorf("text: got %q, want %q", result.Text, "one two")
	}
}

func TestFallbackSingleSegment(t *testing.T) {
	// response has text but no segments array
	rawJSON := `{
		"text": "This is a transcription without segments.",
		"duration": 10.5
	}`

	result, err := parseVerboseJSONResponse(rawJSON, 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 1 {
		t.Fatalf("expected 1 fallback segment, got %d", len(result.Segments))
	}

	seg := result.Segments[0]
	if seg.Start != 0 {
		t.Errorf("fallback segment start should be 0, got %v", seg.Start)
	}

	// duration from response should win over the fallback
	if seg.End != 10.5 {
		t.Errorf("fallback segment end: got %v, want 10.5", seg.End)
	}

	if seg.Text != "This is a transcription without segments." {
		t.Errorf("fallback segment text incorrect: %q", seg.Text)
	}
}

func TestNormalizeResponseLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"english", "en"},
		{"Korean", "ko"},
		{"ko", "ko"},
		{"pt-BR", "pt"},
		{"klingonese", "klingonese"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeResponseLanguage(tt.input); got != tt.want {
				t.Errorf("normalizeResponseLanguage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewOpenAIEngine(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		opts     Options
		wantErr  bool
	}{
		{"openai with key", ProviderOpenAI, Options{APIKey: "k"}, false},
		{"openai without key", ProviderOpenAI, Options{}, true},
		{"whisper with base url", ProviderWhisper, Options{BaseURL: "http://127.0.0.1:9000/v1"}, false},
		{"whisper without base url", ProviderWhisper, Options{APIKey: "k"}, true},
		{"gemini is not openai", ProviderGemini, Options{APIKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewOpenAIEngine(tt.provider, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if engine.model != "whisper-1" {
				t.Errorf("default model: got %q", engine.model)
			}
		})
	}
}
