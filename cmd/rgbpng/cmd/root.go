/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssargent/rgbpng/pkg/config"
	"github.com/ssargent/rgbpng/pkg/di"
	"github.com/ssargent/rgbpng/pkg/logging"
)

var (
	container *di.Container
	cfg       *config.Config
	logger    = zerolog.Nop()
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rgbpng",
	Short: "rgbpng - decoder for 8-bit RGB PNG images",
	Long: `rgbpng decodes non-interlaced, 8-bit truecolor PNG images: it lists
their chunks, reconstructs the pixel grid and renders it, and can serve
the same operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		level, _ := cmd.Flags().GetString("log-level")

		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if level != "" {
			loaded.Logging.Level = level
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err := logging.New(loaded.Logging.Level, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cfg, logger = loaded, log
		return nil
	},
}

// loadConfig reads the config file at path, or the default path when path
// is empty. A missing default config yields the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = config.GetDefaultConfigPath()
	}
	if !config.ConfigExists(path) {
		if explicit {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}
