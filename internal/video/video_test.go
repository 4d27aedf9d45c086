package video

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"},
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 240, "avg_frame_rate": "0/0"}
		],
		"format": {"duration": "12.500000"}
	}`)

	info, err := parseProbe("movie.mp4", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Codec != "h264" || info.Width != 1920 || info.Height != 1080 {
		t.Errorf("first video stream not used: %+v", info)
	}
	if !info.HasAudio {
		t.Error("expected HasAudio")
	}
	if info.Duration != 12500*time.Millisecond {
		t.Errorf("duration: got %v, want 12.5s", info.Duration)
	}
	if info.FrameRate < 29.97 || info.FrameRate > 29.98 {
		t.Errorf("frame rate: got %v", info.FrameRate)
	}
}

func TestParseProbeNoAudio(t *testing.T) {
	info, err := parseProbe("silent.mp4", []byte(`{"streams":[{"codec_type":"video"}],"format":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.HasAudio {
		t.Error("expected HasAudio=false")
	}
	if info.Duration != 0 {
		t.Errorf("expected zero duration, got %v", info.Duration)
	}
}

func TestParseProbeInvalidJSON(t *testing.T) {
	if _, err := parseProbe("x.mp4", []byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"25/1", 25},
		{"24", 24},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseFrameRate(tt.input); got != tt.want {
				t.Errorf("parseFrameRate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractAudioMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.mp4")
	err := ExtractAudio(context.Background(), missing, "out.wav", DefaultExtractAudioOptions())
	if err == nil {
		t.Error("expected error for missing video")
	}
}
