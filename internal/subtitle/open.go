package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// subtitle style based on file extension
func StyleFromPath(path string) (Style, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return StyleSRT, nil
	case ".vtt":
		return StyleVTT, nil
	default:
		return 0, fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}

// Open parses an SRT or VTT file, chosen by extension.
func Open(path string) ([]Segment, Style, error) {
	style, err := StyleFromPath(path)
	if err != nil {
		return nil, 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var segments []Segment
	switch style {
	case StyleSRT:
		segments, err = ParseSRT(file)
	case StyleVTT:
		segments, err = ParseVTT(file)
	}
	if err != nil {
		return nil, 0, err
	}

	return segments, style, nil
}
