package transcribe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mgpai22/voxserve/internal/audio"
	"github.com/mgpai22/voxserve/internal/subtitle"
)

type fakeEngine struct {
	mu      sync.Mutex
	results map[string]*Result
	errs    map[string]error
	calls   []string
}

func (f *fakeEngine) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, audioPath)
	f.mu.Unlock()

	if err := f.errs[audioPath]; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.results[audioPath], nil
}

func (f *fakeEngine) Close() error { return nil }

func TestTranscribeChunksShiftsAndOrders(t *testing.T) {
	engine := &fakeEngine{results: map[string]*Result{
		"c0": {
			Text:     "first chunk",
			Language: "ko",
			Segments: []subtitle.Segment{{Start: 0, End: 2, Text: "first chunk"}},
		},
		"c1": {
			Text: "second chunk",
			Segments: []subtitle.Segment{
				{Start: 0.5, End: 1.5, Text: "second"},
				{Start: 1.5, End: 3, Text: "chunk"},
			},
		},
		"c2": {
			Text:     "third",
			Segments: []subtitle.Segment{{Start: 1, End: 2, Text: "third"}},
		},
	}}

	chunks := []audio.ChunkInfo{
		{Path: "c0", Index: 0, StartTime: 0, EndTime: 60 * time.Second},
		{Path: "c1", Index: 1, StartTime: 60 * time.Second, EndTime: 120 * time.Second},
		{Path: "c2", Index: 2, StartTime: 120 * time.Second, EndTime: 150 * time.Second},
	}

	result, err := TranscribeChunks(context.Background(), engine, chunks, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []subtitle.Segment{
		{Start: 0, End: 2, Text: "first chunk"},
		{Start: 60.5, End: 61.5, Text: "second"},
		{Start: 61.5, End: 63, Text: "chunk"},
		{Start: 121, End: 122, Text: "third"},
	}
	if len(result.Segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(result.Segments), len(want))
	}
	for i := range want {
		if result.Segments[i] != want[i] {
			t.Errorf("segment %d: got %+v, want %+v", i, result.Segments[i], want[i])
		}
	}

	if result.Text != "first chunk second chunk third" {
		t.Errorf("text: got %q", result.Text)
	}
	if result.Language != "ko" {
		t.Errorf("language: got %q, want ko", result.Language)
	}
	if result.Duration != 150*time.Second {
		t.Errorf("duration: got %v, want 150s", result.Duration)
	}
}

func TestTranscribeChunksPropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	engine := &fakeEngine{
		results: map[string]*Result{
			"c0": {Segments: []subtitle.Segment{{Start: 0, End: 1, Text: "ok"}}},
		},
		errs: map[string]error{"c1": boom},
	}

	chunks := []audio.ChunkInfo{
		{Path: "c0", Index: 0, EndTime: time.Second},
		{Path: "c1", Index: 1, StartTime: time.Second, EndTime: 2 * time.Second},
	}

	_, err := TranscribeChunks(context.Background(), engine, chunks, 1)
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped boom error, got %v", err)
	}
}

func TestTranscribeChunksEmpty(t *testing.T) {
	result, err := TranscribeChunks(context.Background(), &fakeEngine{}, nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Segments) != 0 {
		t.Errorf("expected no segments, got %d", len(result.Segments))
	}
}

func TestTranscribeChunksCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &fakeEngine{results: map[string]*Result{"c0": {}}}
	chunks := []audio.ChunkInfo{{Path: "c0", Index: 0, EndTime: time.Second}}

	if _, err := TranscribeChunks(ctx, engine, chunks, 1); err == nil {
		t.Error("expected error for cancelled context")
	}
}
