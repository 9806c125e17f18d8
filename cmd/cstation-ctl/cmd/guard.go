package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/service/common"
)

var (
	guardCmd = &cobra.Command{
		Use:   "guard",
		Short: "Arm, disarm or trigger the guard.",
	}

	guardToggleCmd = &cobra.Command{
		Use:   "toggle",
		Short: "Arm a disarmed guard or disarm an armed one.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return run(func(ctx context.Context, c *common.Client) error {
				return c.ToggleGuard(ctx)
			})
		},
	}

	guardPresenceCmd = &cobra.Command{
		Use:   "presence",
		Short: "Report presence as if the sensor fired.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return run(func(ctx context.Context, c *common.Client) error {
				return c.FixPresence(ctx)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	guardCmd.AddCommand(guardToggleCmd, guardPresenceCmd)
	rootCmd.AddCommand(guardCmd)
}
