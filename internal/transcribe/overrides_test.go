package transcribe

import (
	"context"
	"testing"
)

type recordingEngine struct {
	fakeEngine
	overrides []Overrides
}

func (r *recordingEngine) TranscribeWith(ctx context.Context, audioPath string, o Overrides) (*Result, error) {
	r.overrides = append(r.overrides, o)
	return r.Transcribe(ctx, audioPath)
}

func TestOverridesApply(t *testing.T) {
	base := Options{Language: "en", Prompt: "base", Model: "m"}

	got := Overrides{}.apply(base)
	if got != base {
		t.Errorf("empty overrides changed options: %+v", got)
	}

	got = Overrides{Language: "ko", Prompt: " names: Kim "}.apply(base)
	if got.Language != "ko" || got.Prompt != "names: Kim" || got.Model != "m" {
		t.Errorf("unexpected merged options: %+v", got)
	}
}

func TestTranscribeWithNormalizesLanguage(t *testing.T) {
	engine := &recordingEngine{fakeEngine: fakeEngine{results: map[string]*Result{"a.wav": {Text: "hi"}}}}

	if _, err := TranscribeWith(context.Background(), engine, "a.wav", Overrides{Language: "ko-KR"}); err != nil {
		t.Fatalf("TranscribeWith failed: %v", err)
	}
	if len(engine.overrides) != 1 || engine.overrides[0].Language != "ko" {
		t.Errorf("overrides not normalized: %+v", engine.overrides)
	}

	if _, err := TranscribeWith(context.Background(), engine, "a.wav", Overrides{}); err != nil {
		t.Fatalf("TranscribeWith failed: %v", err)
	}
	if len(engine.overrides) != 1 {
		t.Error("empty overrides should bypass TranscribeWith")
	}

	if _, err := TranscribeWith(context.Background(), engine, "a.wav", Overrides{Language: "not a tag"}); err == nil {
		t.Error("expected error for invalid language")
	}
}

func TestTranscribeWithPlainEngine(t *testing.T) {
	engine := &fakeEngine{results: map[string]*Result{"a.wav": {Text: "hi"}}}
	result, err := TranscribeWith(context.Background(), engine, "a.wav", Overrides{Prompt: "p"})
	if err != nil {
		t.Fatalf("TranscribeWith failed: %v", err)
	}
	if result.Text != "hi" || len(engine.calls) != 1 {
		t.Errorf("plain engine not called: %+v", engine.calls)
	}
}

func TestEnginesSupportOverrides(t *testing.T) {
	var _ OverridableEngine = (*OpenAIEngine)(nil)
	var _ OverridableEngine = (*GeminiEngine)(nil)
}
