package subtitle

import (
	"fmt"
	"math"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm (SRT) or HH:MM:SS.mmm (VTT).
//
// Milliseconds are truncated, never rounded: 59.9995 renders as 00:00:59.999.
// The value is first quantized to whole microseconds so binary float error
// (59.999 is stored as 59.99899...) does not cost a millisecond. Hours are
// unbounded. Negative or NaN input renders as zero; callers should validate
// segments before formatting.
func FormatTimestamp(seconds float64, style Style) string {
	if !(seconds > 0) {
		seconds = 0
	}

	micros := int64(math.Round(seconds * 1e6))
	totalMillis := micros / 1000

	hours := totalMillis / 3_600_000
	minutes := totalMillis / 60_000 % 60
	secs := totalMillis / 1000 % 60
	millis := totalMillis % 1000

	sep := ","
	if style == StyleVTT {
		sep = "."
	}

	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, sep, millis)
}
