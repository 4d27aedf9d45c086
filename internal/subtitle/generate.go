package subtitle

import (
	"fmt"
	"strings"
)

const vttHeader = "WEBVTT\n\n"

// Generate renders segments as SRT or WebVTT text.
//
// Segments are emitted in input order; SRT cue numbers run 1..N regardless of
// timing overlaps. Cue text is trimmed of surrounding whitespace. An empty
// input yields "" for SRT and the bare header for VTT. The first segment that
// fails Validate aborts rendering with a *SegmentError.
func Generate(segments []Segment, style Style) (string, error) {
	var sb strings.Builder

	switch style {
	case StyleSRT:
	case StyleVTT:
		sb.WriteString(vttHeader)
	default:
		return "", fmt.Errorf("unsupported subtitle style: %v", style)
	}

	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return "", &SegmentError{Index: i, Err: err}
		}

		if style == StyleSRT {
			fmt.Fprintf(&sb, "%d\n", i+1)
		}

		// 00:00:00,000 --> 00:00:00,000
		fmt.Fprintf(&sb, "%s --> %s\n",
			FormatTimestamp(seg.Start, style),
			FormatTimestamp(seg.End, style))

		sb.WriteString(strings.TrimSpace(seg.Text))
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}
