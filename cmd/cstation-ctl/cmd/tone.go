package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/service/common"
)

var (
	// toneCmd starts, changes or stops a tone.
	toneCmd = &cobra.Command{
		Use:   "tone [L][,]frequency[,period_ms]",
		Short: "Play a tone.",
		Long: `Plays a square-wave tone on the buzzer.

A frequency of 0 stops the sequencer. A period makes the tone blink on and off
every period milliseconds. The L prefix mirrors the tone on the blue LED.

Examples:
  cstation-ctl tone 440
  cstation-ctl tone L,1000,200
  cstation-ctl tone 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func(ctx context.Context, c *common.Client) error {
				return c.RunTone(ctx, args[0])
			})
		},
	}

	// melodyCmd plays a built-in or inline melody.
	melodyCmd = &cobra.Command{
		Use:   "melody [B][I]index_or_script",
		Short: "Play a melody.",
		Long: `Plays a melody script TEMPO[-SHIFT]:NOTE,NOTE,...

The I prefix selects a built-in melody by index instead of a script.
The B prefix mirrors the melody on the blue LED.

Examples:
  cstation-ctl melody I3
  cstation-ctl melody "120:C4,E4,G4=4,p2,C5"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Scripts with spaces arrive split by the shell.
			script := strings.Join(args, " ")

			return run(func(ctx context.Context, c *common.Client) error {
				return c.RunMelody(ctx, script)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(toneCmd, melodyCmd)
}
