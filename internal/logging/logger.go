package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger so callers can use Infow/Warnw directly.
type Logger struct {
	*zap.SugaredLogger
}

// Options configures a Logger.
type Options struct {
	Level       string // debug, info, warn, error
	Format      string // console or json
	Development bool
}

// NewLogger builds a console logger for CLI use.
func NewLogger(verbose bool) *Logger {
	level := "info"
	if verbose {
		level = "debug"
	}
	logger, err := New(Options{Level: level, Format: "console"})
	if err != nil {
		return NewNop()
	}
	return logger
}

// New builds a logger writing to stderr.
func New(opts Options) (*Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if isatty.IsTerminal(os.Stderr.Fd()) {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)

	zapOpts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development(), zap.AddCaller())
	}

	return &Logger{zap.New(core, zapOpts...).Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// Named returns a child logger scoped to a component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.SugaredLogger.Named(name)}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level %q", level)
	}
}
