package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"steeple/internal/catalog"
	"steeple/internal/config"
)

func newResetErrorsCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var stuck bool

	cmd := &cobra.Command{
		Use:   "reset-errors",
		Short: "Return errored records to pending for retry",
		Long: `Return errored records older than the configured retention to pending.

With --all the retention window is ignored and every errored record resets.
With --stuck, processing records abandoned past the configured timeout are
reset as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				cutoff := time.Now().Add(-cfg.ErrorRetention())
				if all {
					cutoff = time.Now()
				}

				count, err := store.ResetStaleErrors(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Reset %d errored record(s) to pending\n", count)

				if stuck {
					stuckCount, err := store.ResetStuckProcessing(cmd.Context(), time.Now().Add(-cfg.ProcessingTimeout()))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Reset %d stuck processing record(s) to pending\n", stuckCount)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Ignore the retention window and reset every errored record")
	cmd.Flags().BoolVar(&stuck, "stuck", false, "Also reset processing records past the configured timeout")
	return cmd
}
