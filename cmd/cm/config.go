package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage cm configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/cm/config.yaml (if set)
  2. ~/.config/cm/config.yaml

Environment variables can override config file settings using the CM_ prefix:
  CM_JPEG_QUALITY=85
  CM_WORKERS=8
  CM_EXCLUDE=*.tmp,*.part`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Show config file being used
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	maxNameLength, err := config.LoadMaxNameLength()
	if err != nil {
		return err
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("crop_to_content:      %t\n", cfg.CropToContent)
	fmt.Printf("jpeg_quality:         %d\n", cfg.JPEGQuality)
	fmt.Printf("workers:              %d\n", cfg.Workers)
	fmt.Printf("exclude:              %v\n", cfg.Exclude)
	fmt.Printf("max_name_length:      %d\n", maxNameLength)
	fmt.Printf("manifest.enabled:     %t\n", cfg.Manifest.Enabled)
	fmt.Printf("manifest.retention:   %d days\n", cfg.Manifest.RetentionDays)
	fmt.Printf("logging.level:        %s\n", cfg.Logging.Level)

	// Show any environment overrides
	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"CM_CROP_TO_CONTENT",
		"CM_JPEG_QUALITY",
		"CM_WORKERS",
		"CM_EXCLUDE",
		config.MaxNameLengthEnv,
		"CM_MANIFEST_ENABLED",
		"CM_MANIFEST_RETENTION_DAYS",
		"CM_LOGGING_LEVEL",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	// Ensure config file exists
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'cm config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath prints the config file location.
func runConfigPath(cmd *cobra.Command, args []string) error {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Println(configFile)
		return nil
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(configDir, "config.yaml"))
	return nil
}
