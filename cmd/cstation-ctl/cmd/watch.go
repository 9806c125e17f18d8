package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/service/checker"
)

var (
	// pollInterval between status checks.
	pollInterval time.Duration
	// exitOnAlert stops watching once the guard alarms.
	exitOnAlert bool

	// watchCmd polls the station and logs guard transitions.
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Poll the station and log guard state changes.",
		Long: `Polls the station status and logs every guard state change.

With --exit-on-alert the command exits with an error as soon as the guard
raises the alarm, which lets shell scripts react to it.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return checker.Run(ctx, &checker.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				PollInterval:  pollInterval,
				ExitOnAlert:   exitOnAlert,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	watchCmd.Flags().DurationVarP(&pollInterval, "interval", "i", checker.DefaultPollInterval, "poll interval")
	watchCmd.Flags().BoolVar(&exitOnAlert, "exit-on-alert", false, "exit with an error when the guard alarms")
	rootCmd.AddCommand(watchCmd)
}
