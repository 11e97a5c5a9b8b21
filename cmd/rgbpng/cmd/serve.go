/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssargent/rgbpng/pkg/api"
	"github.com/ssargent/rgbpng/pkg/config"
	"github.com/ssargent/rgbpng/pkg/di"
	"github.com/ssargent/rgbpng/pkg/render"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the rgbpng REST API server. Uploaded images are decoded, summarized
and kept in a pebble store under the data directory.

Settings come from the config file (see 'rgbpng init'); flags override them.

Examples:
  rgbpng serve
  rgbpng serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}

		serveCfg := *cfg
		if cmd.Flags().Changed("port") {
			serveCfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			serveCfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			serveCfg.Server.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cmd.Flags().Changed("data-dir") {
			serveCfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, container, &serveCfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key required in X-API-Key (empty disables authentication)")
	serveCmd.Flags().StringP("data-dir", "d", "./data", "Data directory for the image store")
}

// runServe opens the image store and serves the API until ctx is done
func runServe(ctx context.Context, c *di.Container, cfg *config.Config, log zerolog.Logger) error {
	storeDir := filepath.Join(cfg.DataDir, "images")
	if err := os.MkdirAll(storeDir, 0750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := c.OpenStore(storeDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Server.APIKey == "" {
		log.Warn().Msg("no API key configured, the API is unauthenticated")
	}

	format, err := render.ParseFormat(cfg.Render.Format)
	if err != nil {
		return err
	}
	serverConfig := api.ServerConfig{
		Port:          cfg.Server.Port,
		Bind:          cfg.Server.Bind,
		APIKey:        cfg.Server.APIKey,
		MaxImageBytes: cfg.Decode.MaxImageBytes,
		DefaultScale:  cfg.Render.Scale,
		DefaultFormat:  format,
		MaxRenderBytes: cfg.Render.MaxOutputBytes,
	}
	log.Info().Str("data_dir", cfg.DataDir).Msg("image store opened")

	starter := c.GetServerFactory().CreateServerStarter()
	return starter.StartServer(ctx, store, serverConfig, log)
}
