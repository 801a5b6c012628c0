package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/TeamDman/cm-sub000/pkg/cm/inputs"
	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/TeamDman/cm-sub000/pkg/cm/rules"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "cm",
		Short: "Rename and crop images into sibling output trees",
		Long: `cm applies an ordered list of rename rules to image file names,
crops images to their visible content, and writes the results into a
sibling "-output" directory next to each input root. Sources are never
modified.

Examples:
  cm input add ~/Pictures/scans   # Register an input root
  cm rule add 'IMG_' 'Photo_'     # Add a rename rule
  cm plan                         # Preview the rename mapping
  cm clean                        # Process everything
  cm watch                        # Re-run on filesystem changes
  cm history                      # View past runs`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/cm/config.yaml)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "override worker count (0=auto)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Set config name and type
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "cm"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "cm"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("CM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogging initializes the logging system from the loaded config.
// Verbose mode adds debug output on stderr.
func setupLogging(cfg *config.Config) error {
	rotation := logging.DefaultRotationConfig()
	if s := cfg.Logging.Rotation.MaxSize; s != "" {
		if n, err := humanize.ParseBytes(s); err == nil {
			rotation.MaxSize = int64(n)
		}
	}
	rotation.MaxAge = cfg.Logging.Rotation.MaxAge
	rotation.MaxBackups = cfg.Logging.Rotation.MaxBackups
	rotation.Daily = cfg.Logging.Rotation.Daily

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
		Rotation:   rotation,
	}
	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}
	return logging.Init(logCfg)
}

// getRuleStore returns the rule store rooted under the config directory.
func getRuleStore() (*rules.Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return rules.NewStore(filepath.Join(dir, "rules"))
}

// getInputStore returns the input root store under the config directory.
func getInputStore() (*inputs.Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return inputs.NewStore(dir), nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
