/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/rgbpng/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with a generated API key",
	Long: `Write a default rgbpng configuration file with a freshly generated API key.

Examples:
  rgbpng init
  rgbpng init --config ./rgbpng.yaml --data-dir ./data --print-key`,
	// init must work before any config exists
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		return runInit(cmd.OutOrStdout(), configPath, dataDir, force, printKey)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("data-dir", "d", "./data", "Data directory for the image store")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}

// runInit bootstraps the configuration file at configPath
func runInit(w io.Writer, configPath, dataDir string, force, printKey bool) error {
	if config.ConfigExists(configPath) && !force {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
	}

	cfg, err := config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Configuration written to %s\n", configPath)
	fmt.Fprintf(w, "Data directory: %s\n", cfg.DataDir)
	if printKey {
		fmt.Fprintf(w, "API key: %s\n", cfg.Server.APIKey)
	}
	fmt.Fprintf(w, "\nStart the server with:\n  rgbpng serve --config %s\n", configPath)
	return nil
}
