package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/config"
	"github.com/oshokin/cstation/internal/service/server"
	"github.com/oshokin/cstation/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// storageFile path where the EEPROM image is persisted.
	storageFile string
	// logLevel overrides the level from the settings file.
	logLevel string

	// rootCmd represents the base command for running the station daemon.
	rootCmd = &cobra.Command{
		Use:   "cstation [listen-address]",
		Short: "Run the household command station.",
		Long: `Starts the command station: tone sequencer, fan and light automation,
guard escalation and hourly chime, driven by GPIO inputs and a gRPC command surface.

The gRPC server listens on the address from the configuration file unless one is
given as argument (e.g., :50551, 0.0.0.0:50551).
Relay modes, alarm hour and chime settings are persisted to the EEPROM image file.`,
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
				StorageFile:   storageFile,
				LogLevel:      logLevel,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the cstation CLI and exits with non-zero status on error.
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
		StringVarP(&storageFile, "storage-file", "s", "", "path to the persisted EEPROM image (overrides config)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error (overrides config)")
}
