package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/service/common"
)

var (
	chimeCmd = &cobra.Command{
		Use:   "chime",
		Short: "Configure the alarm hour and the hourly chime.",
	}

	alarmHourCmd = &cobra.Command{
		Use:   "alarm-hour hour|none",
		Short: "Set the wake-up hour (0-23) or clear it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			hour := int64(-1)

			if args[0] != "none" {
				var err error

				hour, err = strconv.ParseInt(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("parse hour %q: %w", args[0], err)
				}
			}

			return run(func(ctx context.Context, c *common.Client) error {
				return c.SetAlarmHour(ctx, int32(hour))
			})
		},
	}

	hourlyCmd = &cobra.Command{
		Use:       "hourly on|off",
		Short:     "Enable or disable the hourly chime.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(_ *cobra.Command, args []string) error {
			on := args[0] == "on"

			return run(func(ctx context.Context, c *common.Client) error {
				return c.SetHourlyBeep(ctx, on)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	chimeCmd.AddCommand(alarmHourCmd, hourlyCmd)
	rootCmd.AddCommand(chimeCmd)
}
