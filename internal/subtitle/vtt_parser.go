package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`^(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// ParseVTT reads WebVTT cues back into segments. NOTE and STYLE blocks and
// cue identifiers are skipped; cue settings after the timing line are ignored.
func ParseVTT(r io.Reader) ([]Segment, error) {
	var segments []Segment
	scanner := bufio.NewScanner(r)

	var current *Segment
	var textLines []string
	lineNum := 0
	headerParsed := false

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			segments = append(segments, *current)
		}
		current = nil
		textLines = nil
	}

	skipBlock := func() {
		for scanner.Scan() {
			lineNum++
			if strings.TrimSpace(scanner.Text()) == "" {
				break
			}
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if !headerParsed && strings.HasPrefix(trimmed, "WEBVTT") {
			headerParsed = true
			continue
		}

		if current == nil &&
			(strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE")) {
			skipBlock()
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if matches := vttTimestampRegex.FindStringSubmatch(line); len(matches) == 9 {
			flush()
			start, err := parseClock(matches[1], matches[2], matches[3], matches[4])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseClock(matches[5], matches[6], matches[7], matches[8])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Segment{Start: start, End: end}
			continue
		}

		if matches := vttShortTimestampRegex.FindStringSubmatch(trimmed); len(matches) == 7 {
			flush()
			start, err := parseClock("00", matches[1], matches[2], matches[3])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseClock("00", matches[4], matches[5], matches[6])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Segment{Start: start, End: end}
			continue
		}

		// cue identifiers precede the timing line
		if current != nil {
			textLines = append(textLines, line)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT: %w", err)
	}

	return segments, nil
}
