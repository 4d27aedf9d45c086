package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create a sample configuration file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"skipConfigLoad": "true"},
	RunE:        runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:         "validate",
	Short:       "Validate the configuration file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"skipConfigLoad": "true"},
	RunE:        runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringP("path", "p", "", "Destination for the configuration file")
	configInitCmd.Flags().Bool("overwrite", false, "Overwrite an existing configuration file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	targetPath, _ := cmd.Flags().GetString("path")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	target, err := resolveInitTarget(targetPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %q: %w", dir, err)
	}

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("check config path: %w", err)
		}
	}

	if err := config.CreateSample(target); err != nil {
		return fmt.Errorf("create sample config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
	fmt.Fprintln(out, "Set transcription.api_key (or export OPENAI_API_KEY) before running voxserve serve.")
	return nil
}

func resolveInitTarget(targetPath string) (string, error) {
	target := strings.TrimSpace(targetPath)
	if target == "" {
		target = strings.TrimSpace(configPath)
	}
	if target == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return defaultPath, nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, path, exists, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := c.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config path: %s\n", path)
	if !exists {
		fmt.Fprintln(out, "Config file did not exist; defaults were used")
	}
	if c.Transcription.APIKey == "" {
		fmt.Fprintf(out, "Warning: no API key found for the %s transcription provider\n", c.Transcription.Provider)
	}
	fmt.Fprintln(out, "Configuration valid")
	return nil
}
