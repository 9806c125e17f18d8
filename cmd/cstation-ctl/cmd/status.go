package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/cstation/internal/service/client"
	"github.com/oshokin/cstation/internal/service/common"
)

// statusCmd prints the current station snapshot.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the station state.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(func(ctx context.Context, c *common.Client) error {
			fields, err := c.Status(ctx)
			if err != nil {
				return err
			}

			return client.PrintStatus(cmd.OutOrStdout(), fields)
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(statusCmd)
}
