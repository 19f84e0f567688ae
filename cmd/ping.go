package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mabhi256/medi/internal/client"
	"github.com/mabhi256/medi/utils"
)

var pingTimeout time.Duration

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the analysis service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
		defer cancel()

		c := client.New(cfg.Endpoint, nil, logger)
		start := time.Now()
		msg, err := c.Ping(ctx)
		if err != nil {
			return fmt.Errorf("🔴 %s unreachable: %w", c.Endpoint(), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "🟢 %s • %s (%s)\n", c.Endpoint(), msg, utils.FormatDuration(time.Since(start)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 5*time.Second, "give up after this long")
}
