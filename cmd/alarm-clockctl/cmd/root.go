package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath stores the configuration file path.
	configPath string
	// serverAddress overrides the server base URL from config.
	serverAddress string

	// rootCmd represents the base command for managing alarms.
	rootCmd = &cobra.Command{
		Use:   "alarm-clockctl",
		Short: "Manage alarms on an alarm-clock server.",
		Long: `Command line client for the alarm-clock server.

Connects to the server's HTTP API to list, create, edit and delete alarms,
toggle them on and off, snooze, and watch live events. The server address is
taken from the configuration file unless overridden with --server.`,
	}
)

// clientOptions builds the shared options from global flags.
func clientOptions() *client.Options {
	return &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
	}
}

// Execute runs the alarm-clockctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup global flags shared by every subcommand.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "server base URL (e.g. http://localhost:8090)")
}
