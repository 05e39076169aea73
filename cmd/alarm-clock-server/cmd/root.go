package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/server"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// storeFile path where alarms are persisted.
	storeFile string

	// rootCmd represents the base command for running the alarm server.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock-server [listen-address]",
		Short: "Run the alarm scheduling server.",
		Long: `Starts the alarm server that schedules alarms and serves the HTTP API.

The server listens on the specified address or uses settings from the
configuration file. Listen address can be provided as argument to override
the config (e.g., :9090, 0.0.0.0:8090). Alarms are persisted to a JSON file
for recovery across restarts; enabled alarms are re-armed on startup.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StoreFile:     storeFile,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-clock-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&storeFile, "store-file", "s", config.DefaultStoreFilename, "path to persist alarms")
}
