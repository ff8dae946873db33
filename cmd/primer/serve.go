package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/config"
	"github.com/jackzampolin/primer/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Primer server",
	Long: `Start the Primer HTTP server.

Documents live in memory for the lifetime of the process. Configuration
is hot-reloaded: editing the config file updates the provider registry
without a restart.

Examples:
  primer serve                    # Start on default port 8090
  primer serve --port 3000        # Start on custom port
  primer serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		port := servePort
		if port == "" {
			port = cm.Get().Server.Port
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          port,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
