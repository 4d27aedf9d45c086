package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains HTTP listener settings.
type Server struct {
	Bind                   string   `toml:"bind"`
	MaxUploadMB            int      `toml:"max_upload_mb"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
	AllowedOrigins         []string `toml:"allowed_origins"`
}

// Transcription selects and configures the speech-recognition engine.
type Transcription struct {
	Provider    string `toml:"provider"`
	APIKey      string `toml:"api_key"`
	BaseURL     string `toml:"base_url"`
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	Prompt      string `toml:"prompt"`
	Concurrency int    `toml:"concurrency"`
}

// Summarize configures the optional transcript summarizer.
type Summarize struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`
}

// Usage configures the transcription minute ledger.
type Usage struct {
	Enabled      bool    `toml:"enabled"`
	LimitMinutes float64 `toml:"limit_minutes"`
	MaxMinutes   float64 `toml:"max_minutes"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	TempDir string `toml:"temp_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for voxserve.
type Config struct {
	Server        Server        `toml:"server"`
	Transcription Transcription `toml:"transcription"`
	Summarize     Summarize     `toml:"summarize"`
	Usage         Usage         `toml:"usage"`
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
}

// SampleConfig returns the commented sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: defaults are returned and exists reports false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("VOXSERVE_CONFIG"))
	}
	if path == "" {
		path = defaultConfigPath
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// applyEnv fills empty API keys from the conventional provider variables.
func (c *Config) applyEnv() {
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = envKeyFor(c.Transcription.Provider)
	}
	if c.Summarize.APIKey == "" && c.Summarize.Provider != "" {
		c.Summarize.APIKey = envKeyFor(c.Summarize.Provider)
	}
}

// ProviderAPIKey returns the API key exported in the environment for a
// provider, or "" when none is set.
func ProviderAPIKey(provider string) string {
	return envKeyFor(provider)
}

func envKeyFor(provider string) string {
	var names []string
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		names = []string{"OPENAI_API_KEY", "GROQ_API_KEY"}
	case "whisper":
		names = []string{"GROQ_API_KEY", "OPENAI_API_KEY"}
	case "gemini":
		names = []string{"GEMINI_API_KEY"}
	case "anthropic":
		names = []string{"ANTHROPIC_API_KEY"}
	}
	for _, name := range names {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

// EnsureDirectories creates the data directory and the temp directory if set.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.TempDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "voxserve.db")
}

// LockPath returns the single-instance server lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "voxserve.lock")
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// ShutdownTimeout returns the graceful shutdown window.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
