package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return err
	}

	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	c.Transcription.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcription.BaseURL), "/")
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.Concurrency <= 0 {
		c.Transcription.Concurrency = defaultConcurrency
	}

	c.Summarize.Provider = strings.ToLower(strings.TrimSpace(c.Summarize.Provider))
	c.Summarize.BaseURL = strings.TrimRight(strings.TrimSpace(c.Summarize.BaseURL), "/")
	c.Summarize.Model = strings.TrimSpace(c.Summarize.Model)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
