package config

const (
	defaultBind                   = "127.0.0.1:8000"
	defaultMaxUploadMB            = 100
	defaultShutdownTimeoutSeconds = 10
	defaultTranscriptionProvider  = "openai"
	defaultConcurrency            = 3
	defaultUsageLimitMinutes      = 530
	defaultUsageMaxMinutes        = 600
	defaultDataDir                = "~/.local/share/voxserve"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultConfigPath             = "~/.config/voxserve/config.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:                   defaultBind,
			MaxUploadMB:            defaultMaxUploadMB,
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
			AllowedOrigins:         []string{"*"},
		},
		Transcription: Transcription{
			Provider:    defaultTranscriptionProvider,
			Concurrency: defaultConcurrency,
		},
		Usage: Usage{
			Enabled:      true,
			LimitMinutes: defaultUsageLimitMinutes,
			MaxMinutes:   defaultUsageMaxMinutes,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
