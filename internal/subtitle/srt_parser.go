package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2}),(\d{3})`,
)

// ParseSRT reads SubRip cues back into segments. Cue numbers are ignored;
// multi-line cue text is joined with "\n".
func ParseSRT(r io.Reader) ([]Segment, error) {
	var segments []Segment
	scanner := bufio.NewScanner(r)

	var current *Segment
	var textLines []string
	expectIndex := true
	lineNum := 0

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			segments = append(segments, *current)
		}
		current = nil
		textLines = nil
		expectIndex = true
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if expectIndex && current == nil {
			expectIndex = false
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
		}

		if current == nil {
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) == 9 {
				start, err := parseClock(matches[1], matches[2], matches[3], matches[4])
				if err != nil {
					return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
				}
				end, err := parseClock(matches[5], matches[6], matches[7], matches[8])
				if err != nil {
					return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
				}
				current = &Segment{Start: start, End: end}
			}
			continue
		}

		textLines = append(textLines, line)
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT: %w", err)
	}

	return segments, nil
}

// parseClock converts clock fields to seconds via integer milliseconds so
// FormatTimestamp reproduces the same text.
func parseClock(hours, minutes, seconds, millis string) (float64, error) {
	h, err := strconv.ParseInt(hours, 10, 64)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseInt(minutes, 10, 64)
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return 0, err
	}
	if m > 59 || s > 59 {
		return 0, fmt.Errorf("clock field out of range: %s:%s:%s", hours, minutes, seconds)
	}

	total := ((h*60+m)*60+s)*1000 + ms
	return float64(total) / 1000, nil
}
