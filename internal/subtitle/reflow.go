package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ReflowOptions bounds cue size for readability.
type ReflowOptions struct {
	MaxCharsPerLine int
	MaxLinesPerSub  int
	MaxDuration     time.Duration
}

func DefaultReflowOptions() ReflowOptions {
	return ReflowOptions{
		MaxCharsPerLine: 42, // Standard subtitle line length
		MaxLinesPerSub:  2,  // Most players support 2 lines
		MaxDuration:     7 * time.Second,
	}
}

// Reflow splits oversized segments into several cues and wraps long text onto
// two lines. Segments with blank text are dropped. Order is preserved.
func Reflow(segments []Segment, opts ReflowOptions) []Segment {
	if opts.MaxCharsPerLine <= 0 || opts.MaxLinesPerSub <= 0 || opts.MaxDuration <= 0 {
		opts = DefaultReflowOptions()
	}

	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		if opts.needsSplit(text, seg.End-seg.Start) {
			out = append(out, opts.splitSegment(seg)...)
			continue
		}

		out = append(out, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  opts.wrapText(text),
		})
	}

	return out
}

func (o ReflowOptions) needsSplit(text string, seconds float64) bool {
	// if text is too long, split
	if utf8.RuneCountInString(text) > o.MaxCharsPerLine*o.MaxLinesPerSub {
		return true
	}

	return seconds > o.MaxDuration.Seconds()
}

// splits long segment into multiple cues
func (o ReflowOptions) splitSegment(seg Segment) []Segment {
	text := strings.TrimSpace(seg.Text)
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	totalSeconds := seg.End - seg.Start

	maxChars := o.MaxCharsPerLine * o.MaxLinesPerSub
	totalChars := utf8.RuneCountInString(text)

	numSplits := (totalChars + maxChars - 1) / maxChars
	if numSplits < 1 {
		numSplits = 1
	}

	durationSplits := int(totalSeconds/o.MaxDuration.Seconds()) + 1
	if durationSplits > numSplits {
		numSplits = durationSplits
	}

	// never more cues than words
	if numSplits > len(words) {
		numSplits = len(words)
	}

	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	secondsPerSplit := totalSeconds / float64(numSplits)

	var out []Segment
	currentStart := seg.Start

	for i := 0; i < numSplits && len(words) > 0; i++ {
		endIdx := wordsPerSplit
		if endIdx > len(words) {
			endIdx = len(words)
		}

		splitText := strings.Join(words[:endIdx], " ")
		words = words[endIdx:]

		currentEnd := currentStart + secondsPerSplit
		if len(words) == 0 {
			currentEnd = seg.End
		}

		out = append(out, Segment{
			Start: currentStart,
			End:   currentEnd,
			Text:  o.wrapText(splitText),
		})

		currentStart = currentEnd
	}

	return out
}

// wraps text onto two lines at the word break closest to the middle
func (o ReflowOptions) wrapText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	if runeCount <= o.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		return strings.Join(words[:bestSplit], " ") + "\n" +
			strings.Join(words[bestSplit:], " ")
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
