package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/config"
	"github.com/oshokin/cstation/internal/service/client"
	"github.com/oshokin/cstation/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the station address from config.
	serverAddress string
	// wait keeps retrying while the station is unavailable.
	wait bool

	// rootCmd represents the base command of the station control tool.
	rootCmd = &cobra.Command{
		Use:   "cstation-ctl",
		Short: "Control a running command station.",
		Long: `Sends commands to a running cstation daemon over gRPC.

The station address is taken from the configuration file unless --server is given.
With --wait the command is retried every second while the station is unreachable.`,
		SilenceUsage: true,
	}
)

// Execute runs the cstation-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run executes action with signal-aware cancellation and the global flags.
func run(action client.Action) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return client.Run(ctx, &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Wait:          wait,
	}, action)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "a", "", "station address (overrides config)")
	rootCmd.PersistentFlags().
		BoolVarP(&wait, "wait", "w", false, "retry while the station is unavailable")
}
