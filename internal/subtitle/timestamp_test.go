package subtitle

import "testing"

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		style   Style
		want    string
	}{
		{"zero srt", 0, StyleSRT, "00:00:00,000"},
		{"zero vtt", 0, StyleVTT, "00:00:00.000"},
		{"hour minute second half", 3661.5, StyleSRT, "01:01:01,500"},
		{"hour minute second half vtt", 3661.5, StyleVTT, "01:01:01.500"},
		{"just under a minute", 59.999, StyleVTT, "00:00:59.999"},
		{"truncates instead of rolling over", 59.9995, StyleVTT, "00:00:59.999"},
		{"truncates sub-millisecond", 12.9996, StyleSRT, "00:00:12,999"},
		{"one millisecond", 1.001, StyleSRT, "00:00:01,001"},
		{"exact minute", 60, StyleSRT, "00:01:00,000"},
		{"more than 99 hours", 360000.25, StyleSRT, "100:00:00,250"},
		{"negative clamps to zero", -3, StyleVTT, "00:00:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTimestamp(tt.seconds, tt.style)
			if got != tt.want {
				t.Errorf(
					"FormatTimestamp(%v, %v) = %q, want %q",
					tt.seconds,
					tt.style,
					got,
					tt.want,
				)
			}
		})
	}
}

func TestFormatTimestampRoundTripsParsedClock(t *testing.T) {
	for ms := int64(0); ms < 200000; ms += 7 {
		seconds := float64(ms) / 1000
		got := FormatTimestamp(seconds, StyleSRT)

		h, m, s, frac := got[0:2], got[3:5], got[6:8], got[9:12]
		back, err := parseClock(h, m, s, frac)
		if err != nil {
			t.Fatalf("parseClock(%q) failed: %v", got, err)
		}
		if back != seconds {
			t.Fatalf("round trip of %dms: got %v via %q", ms, back, got)
		}
	}
}
