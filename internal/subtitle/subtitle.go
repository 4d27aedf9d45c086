package subtitle

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSegment reports a segment whose timing cannot be rendered.
var ErrInvalidSegment = errors.New("invalid segment")

// represents transcribed audio segment, times in seconds
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Validate checks the timing contract: finite, non-negative, End >= Start.
func (s Segment) Validate() error {
	switch {
	case math.IsNaN(s.Start) || math.IsInf(s.Start, 0):
		return fmt.Errorf("%w: start is not finite", ErrInvalidSegment)
	case math.IsNaN(s.End) || math.IsInf(s.End, 0):
		return fmt.Errorf("%w: end is not finite", ErrInvalidSegment)
	case s.Start < 0:
		return fmt.Errorf("%w: negative start %.3f", ErrInvalidSegment, s.Start)
	case s.End < s.Start:
		return fmt.Errorf(
			"%w: end %.3f before start %.3f",
			ErrInvalidSegment,
			s.End,
			s.Start,
		)
	}
	return nil
}

// SegmentError locates a malformed segment within its sequence.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// subtitle timestamp/cue style
type Style int

const (
	StyleSRT Style = iota
	StyleVTT
)

func (s Style) String() string {
	switch s {
	case StyleSRT:
		return "srt"
	case StyleVTT:
		return "vtt"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// file extension for a style
func (s Style) Extension() string {
	switch s {
	case StyleVTT:
		return ".vtt"
	default:
		return ".srt"
	}
}

func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "srt":
		return StyleSRT, nil
	case "vtt", "webvtt":
		return StyleVTT, nil
	default:
		return 0, fmt.Errorf("unsupported subtitle style %q: use srt or vtt", name)
	}
}
