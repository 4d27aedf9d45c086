package audio

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestIsSupportedUpload(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"speech.wav", true},
		{"speech.MP3", true},
		{"voice memo.m4a", true},
		{"track.flac", true},
		{"clip.ogg", true},
		{"recording.webm", true},
		{"archive.tar.mp3", true},
		{"notes.txt", false},
		{"movie.mp4", false},
		{"noext", false},
		{".mp3x", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := IsSupportedUpload(tt.filename); got != tt.want {
				t.Errorf("IsSupportedUpload(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestSupportedUploadExtensionsIsACopy(t *testing.T) {
	exts := SupportedUploadExtensions()
	want := []string{".wav", ".mp3", ".m4a", ".flac", ".ogg", ".webm"}
	if !reflect.DeepEqual(exts, want) {
		t.Fatalf("got %v, want %v", exts, want)
	}

	exts[0] = ".exe"
	if IsSupportedUpload("x.exe") {
		t.Error("mutating the returned slice changed the allowlist")
	}
}

func TestMediaFileDetection(t *testing.T) {
	tests := []struct {
		path  string
		audio bool
		video bool
	}{
		{"a.mp3", true, false},
		{"a.WAV", true, false},
		{"a.mp4", false, true},
		{"a.mkv", false, true},
		{"a.webm", false, true},
		{"a.srt", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsAudioFile(tt.path); got != tt.audio {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.audio)
			}
			if got := IsVideoFile(tt.path); got != tt.video {
				t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.video)
			}
			if got := IsMediaFile(tt.path); got != (tt.audio || tt.video) {
				t.Errorf("IsMediaFile(%q) = %v", tt.path, got)
			}
		})
	}
}

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name  string
		total time.Duration
		chunk time.Duration
		want  []chunkPlan
	}{
		{
			name:  "exact multiple",
			total: 2 * time.Minute,
			chunk: time.Minute,
			want: []chunkPlan{
				{index: 0, startSeconds: 0, endSeconds: 60},
				{index: 1, startSeconds: 60, endSeconds: 120},
			},
		},
		{
			name:  "short tail",
			total: 150 * time.Second,
			chunk: time.Minute,
			want: []chunkPlan{
				{index: 0, startSeconds: 0, endSeconds: 60},
				{index: 1, startSeconds: 60, endSeconds: 120},
				{index: 2, startSeconds: 120, endSeconds: 150},
			},
		},
		{
			name:  "shorter than one chunk",
			total: 10 * time.Second,
			chunk: time.Minute,
			want:  []chunkPlan{{index: 0, startSeconds: 0, endSeconds: 10}},
		},
		{
			name:  "zero total",
			total: 0,
			chunk: time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planChunks(tt.total, tt.chunk)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("planChunks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeArgs(t *testing.T) {
	args, err := EncodeArgs(DefaultCompressionOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args["acodec"] != "libmp3lame" || args["b:a"] != "64k" || args["ar"] != 16000 {
		t.Errorf("unexpected mp3 args: %v", args)
	}

	args, err = EncodeArgs(CompressionOptions{Format: "wav", Bitrate: "128k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := args["b:a"]; ok {
		t.Error("lossless format should ignore bitrate")
	}
	if _, ok := args["ar"]; ok {
		t.Error("zero sample rate should not be passed")
	}

	if _, err := EncodeArgs(CompressionOptions{Format: "opus"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestChunkAudioValidatesInput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := ChunkAudio(ctx, "whatever.mp3", 0, dir, 1); err == nil {
		t.Error("expected error for zero chunk duration")
	}
	missing := filepath.Join(dir, "missing.mp3")
	if _, err := ChunkAudio(ctx, missing, time.Minute, dir, 1); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCleanupChunks(t *testing.T) {
	dir := t.TempDir()
	var chunks []ChunkInfo
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, "chunk"+string(rune('a'+i))+".mp3")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
		chunks = append(chunks, ChunkInfo{Path: path, Index: i})
	}
	chunks = append(chunks, ChunkInfo{}, ChunkInfo{Path: filepath.Join(dir, "gone.mp3")})

	if err := CleanupChunks(chunks); err != nil {
		t.Fatalf("CleanupChunks failed: %v", err)
	}
	for _, c := range chunks[:3] {
		if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
			t.Errorf("chunk %q still exists", c.Path)
		}
	}
}
