package subtitle

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	single := []Segment{{Start: 1.0, End: 2.5, Text: " hello "}}

	tests := []struct {
		name     string
		segments []Segment
		style    Style
		want     string
	}{
		{
			name:  "empty srt",
			style: StyleSRT,
			want:  "",
		},
		{
			name:  "empty vtt is header only",
			style: StyleVTT,
			want:  "WEBVTT\n\n",
		},
		{
			name:     "single srt strips text",
			segments: single,
			style:    StyleSRT,
			want:     "1\n00:00:01,000 --> 00:00:02,500\nhello\n\n",
		},
		{
			name:     "single vtt strips text",
			segments: single,
			style:    StyleVTT,
			want:     "WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nhello\n\n",
		},
		{
			name: "two cues srt",
			segments: []Segment{
				{Start: 0, End: 1.5, Text: "Hello world."},
				{Start: 1.5, End: 3, Text: "How are you?"},
			},
			style: StyleSRT,
			want: "1\n00:00:00,000 --> 00:00:01,500\nHello world.\n\n" +
				"2\n00:00:01,500 --> 00:00:03,000\nHow are you?\n\n",
		},
		{
			name: "empty text is kept positionally",
			segments: []Segment{
				{Start: 0, End: 1, Text: "   "},
				{Start: 1, End: 2, Text: "after"},
			},
			style: StyleVTT,
			want: "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n\n\n" +
				"00:00:01.000 --> 00:00:02.000\nafter\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.segments, tt.style)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateNumbersInInputOrder(t *testing.T) {
	segments := []Segment{
		{Start: 10, End: 12, Text: "third in time"},
		{Start: 0, End: 5, Text: "first in time"},
		{Start: 3, End: 8, Text: "overlapping"},
	}

	got, err := Generate(segments, StyleSRT)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocks := strings.Split(strings.TrimSuffix(got, "\n\n"), "\n\n")
	if len(blocks) != len(segments) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(segments))
	}

	for i, block := range blocks {
		lines := strings.Split(block, "\n")
		if len(lines) != 3 {
			t.Fatalf("block %d: got %d lines, want 3", i, len(lines))
		}
		if want := []string{"1", "2", "3"}[i]; lines[0] != want {
			t.Errorf("block %d: sequence %q, want %q", i, lines[0], want)
		}
		if lines[2] != segments[i].Text {
			t.Errorf("block %d: text %q, want %q", i, lines[2], segments[i].Text)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	segments := []Segment{
		{Start: 0.123, End: 4.56, Text: "one"},
		{Start: 4.56, End: 3725.001, Text: "two"},
	}

	for _, style := range []Style{StyleSRT, StyleVTT} {
		first, err := Generate(segments, style)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Generate(segments, style)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Errorf("%v output differs between calls", style)
		}
	}
}

func TestGenerateRejectsMalformedSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		index    int
	}{
		{
			name:     "end before start",
			segments: []Segment{{Start: 2, End: 1, Text: "bad"}},
			index:    0,
		},
		{
			name: "negative start after valid cue",
			segments: []Segment{
				{Start: 0, End: 1, Text: "ok"},
				{Start: -1, End: 1, Text: "bad"},
			},
			index: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.segments, StyleSRT)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !errors.Is(err, ErrInvalidSegment) {
				t.Errorf("expected ErrInvalidSegment, got %v", err)
			}
			var segErr *SegmentError
			if !errors.As(err, &segErr) {
				t.Fatalf("expected *SegmentError, got %T", err)
			}
			if segErr.Index != tt.index {
				t.Errorf("index: got %d, want %d", segErr.Index, tt.index)
			}
		})
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    Style
		wantErr bool
	}{
		{"srt", StyleSRT, false},
		{"SRT", StyleSRT, false},
		{" vtt ", StyleVTT, false},
		{"webvtt", StyleVTT, false},
		{"ass", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStyle(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStyle(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
