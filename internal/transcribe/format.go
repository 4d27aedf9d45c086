package transcribe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mgpai22/voxserve/internal/subtitle"
)

// ErrUnsupportedFormat is returned for response formats outside the closed set.
var ErrUnsupportedFormat = errors.New("unsupported response format")

// ResponseFormat selects how a Result is rendered for the caller.
type ResponseFormat int

const (
	FormatJSON ResponseFormat = iota
	FormatText
	FormatSRT
	FormatVTT
	FormatVerboseJSON
)

// ResponseFormats lists every supported format in wire-name order.
var ResponseFormats = []ResponseFormat{
	FormatJSON,
	FormatText,
	FormatSRT,
	FormatVTT,
	FormatVerboseJSON,
}

// ParseResponseFormat maps a request value to a format. Empty means JSON.
func ParseResponseFormat(s string) (ResponseFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	case "verbose_json":
		return FormatVerboseJSON, nil
	default:
		return FormatJSON, fmt.Errorf("%w %q: use json, text, srt, vtt, or verbose_json", ErrUnsupportedFormat, s)
	}
}

func (f ResponseFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	case FormatSRT:
		return "srt"
	case FormatVTT:
		return "vtt"
	case FormatVerboseJSON:
		return "verbose_json"
	default:
		return fmt.Sprintf("ResponseFormat(%d)", int(f))
	}
}

// ContentType returns the HTTP content type for the rendered body.
func (f ResponseFormat) ContentType() string {
	switch f {
	case FormatJSON, FormatVerboseJSON:
		return "application/json"
	case FormatText, FormatSRT:
		return "text/plain; charset=utf-8"
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension used when writing the format to disk.
func (f ResponseFormat) Extension() string {
	switch f {
	case FormatJSON, FormatVerboseJSON:
		return ".json"
	case FormatText:
		return ".txt"
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	default:
		return ""
	}
}

// IsSubtitle reports whether the format is a timed subtitle format.
func (f ResponseFormat) IsSubtitle() bool {
	return f == FormatSRT || f == FormatVTT
}

type jsonResponse struct {
	Text string `json:"text"`
}

type verboseSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type verboseResponse struct {
	Task     string           `json:"task"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Text     string           `json:"text"`
	Segments []verboseSegment `json:"segments"`
}

// Render serializes a result in the requested format.
func Render(result *Result, format ResponseFormat) ([]byte, error) {
	if result == nil {
		return nil, errors.New("nil transcription result")
	}

	switch format {
	case FormatJSON:
		return json.Marshal(jsonResponse{Text: result.Text})
	case FormatText:
		return []byte(result.Text), nil
	case FormatSRT:
		out, err := subtitle.Generate(result.Segments, subtitle.StyleSRT)
		return []byte(out), err
	case FormatVTT:
		out, err := subtitle.Generate(result.Segments, subtitle.StyleVTT)
		return []byte(out), err
	case FormatVerboseJSON:
		segments := make([]verboseSegment, len(result.Segments))
		for i, seg := range result.Segments {
			segments[i] = verboseSegment{
				ID:    i,
				Start: seg.Start,
				End:   seg.End,
				Text:  seg.Text,
			}
		}
		return json.Marshal(verboseResponse{
			Task:     "transcribe",
			Language: result.Language,
			Duration: result.Duration.Seconds(),
			Text:     result.Text,
			Segments: segments,
		})
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}
