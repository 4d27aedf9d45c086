//go:build !ffmpeg_embedded

package ffmpeg

import "testing"

func TestEmbeddedStubReportsNoAsset(t *testing.T) {
	used, err := extractEmbedded("ffmpeg-6.1-linux-64.zip", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used {
		t.Error("default build should not carry an embedded bundle")
	}
}
