package subtitle

import (
	"os"
	"path/filepath"
)

// WriteFile renders segments and writes them to path, creating parent dirs.
func WriteFile(path string, segments []Segment, style Style) error {
	content, err := Generate(segments, style)
	if err != nil {
		return err
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(content), 0644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
