package transcribe

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeLanguage validates a BCP 47 tag and reduces it to its ISO 639
// base ("ko-KR" becomes "ko"). Empty input and "und" mean auto-detect.
func NormalizeLanguage(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", nil
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", tag, err)
	}

	base, _ := parsed.Base()
	if base.String() == "und" {
		return "", nil
	}
	return base.String(), nil
}

// languageName returns the English name for a normalized language code,
// falling back to the code itself.
func languageName(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
