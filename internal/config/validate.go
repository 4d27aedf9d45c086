package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSummarize(); err != nil {
		return err
	}
	if err := c.validateUsage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		return errors.New("server.shutdown_timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case "openai", "gemini":
	case "whisper":
		if c.Transcription.BaseURL == "" {
			return errors.New("transcription.base_url must be set for the whisper provider")
		}
	default:
		return fmt.Errorf(
			"transcription.provider %q is not supported: use openai, whisper, or gemini",
			c.Transcription.Provider,
		)
	}
	return nil
}

func (c *Config) validateSummarize() error {
	switch c.Summarize.Provider {
	case "", "anthropic", "openai", "gemini":
		return nil
	default:
		return fmt.Errorf(
			"summarize.provider %q is not supported: use anthropic, openai, or gemini",
			c.Summarize.Provider,
		)
	}
}

func (c *Config) validateUsage() error {
	if c.Usage.LimitMinutes <= 0 {
		return errors.New("usage.limit_minutes must be positive")
	}
	if c.Usage.MaxMinutes < c.Usage.LimitMinutes {
		return errors.New("usage.max_minutes must be at least usage.limit_minutes")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported: use console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
