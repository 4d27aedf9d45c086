package transcribe

import (
	"context"
	"strings"
)

// Overrides are per-call options layered over an engine's configured defaults.
// Empty fields keep the default.
type Overrides struct {
	Language string
	Prompt   string
}

func (o Overrides) empty() bool {
	return strings.TrimSpace(o.Language) == "" && strings.TrimSpace(o.Prompt) == ""
}

// apply returns opts with the overrides merged in. Language must already be normalized.
func (o Overrides) apply(opts Options) Options {
	if lang := strings.TrimSpace(o.Language); lang != "" {
		opts.Language = lang
	}
	if prompt := strings.TrimSpace(o.Prompt); prompt != "" {
		opts.Prompt = prompt
	}
	return opts
}

// OverridableEngine is implemented by engines that accept per-call overrides.
type OverridableEngine interface {
	Engine
	TranscribeWith(ctx context.Context, audioPath string, o Overrides) (*Result, error)
}

// TranscribeWith runs engine with overrides when it supports them and falls
// back to a plain Transcribe otherwise.
func TranscribeWith(ctx context.Context, engine Engine, audioPath string, o Overrides) (*Result, error) {
	if o.empty() {
		return engine.Transcribe(ctx, audioPath)
	}
	lang, err := NormalizeLanguage(o.Language)
	if err != nil {
		return nil, err
	}
	o.Language = lang
	if oe, ok := engine.(OverridableEngine); ok {
		return oe.TranscribeWith(ctx, audioPath, o)
	}
	return engine.Transcribe(ctx, audioPath)
}

func (e *OpenAIEngine) TranscribeWith(ctx context.Context, audioPath string, o Overrides) (*Result, error) {
	scoped := *e
	scoped.options = o.apply(e.options)
	return scoped.Transcribe(ctx, audioPath)
}

func (e *GeminiEngine) TranscribeWith(ctx context.Context, audioPath string, o Overrides) (*Result, error) {
	scoped := *e
	scoped.options = o.apply(e.options)
	return scoped.Transcribe(ctx, audioPath)
}
