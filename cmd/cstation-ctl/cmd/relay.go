package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/service/common"
)

// relayModes are the accepted fan and light modes.
//
//nolint:gochecknoglobals // Shared by both relay commands.
var relayModes = []string{"on", "off", "auto"}

var (
	fanCmd = &cobra.Command{
		Use:       "fan on|off|auto",
		Short:     "Switch the fan by hand or hand it back to the automation.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: relayModes,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func(ctx context.Context, c *common.Client) error {
				return c.SetFan(ctx, args[0])
			})
		},
	}

	lightCmd = &cobra.Command{
		Use:       "light on|off|auto",
		Short:     "Switch the light by hand or hand it back to the automation.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: relayModes,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func(ctx context.Context, c *common.Client) error {
				return c.SetLight(ctx, args[0])
			})
		},
	}

	luxCmd = &cobra.Command{
		Use:   "lux value",
		Short: "Report an ambient light reading.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			lux, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parse lux %q: %w", args[0], err)
			}

			return run(func(ctx context.Context, c *common.Client) error {
				return c.ReportLux(ctx, lux)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(fanCmd, lightCmd, luxCmd)
}
