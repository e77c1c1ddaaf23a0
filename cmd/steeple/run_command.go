package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"steeple/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var preview bool
	var skipReconcile bool
	var reconcileLimit int
	var folderID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the next pending record through fetch and upload",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, store, err := ctx.buildOrchestrator()
			if err != nil {
				return err
			}
			defer store.Close()

			outcome, err := orch.RunOnce(cmd.Context(), pipeline.Options{
				Preview:        preview,
				SkipReconcile:  skipReconcile,
				ReconcileLimit: reconcileLimit,
				FolderID:       folderID,
			})
			if errors.Is(err, pipeline.ErrAlreadyRunning) {
				return errors.New("another steeple invocation is already running")
			}

			out := cmd.OutOrStdout()
			if !skipReconcile {
				fmt.Fprintf(out, "Reconcile: %d discovered, %d created, %d skipped, %d errors\n",
					outcome.Reconcile.Discovered, outcome.Reconcile.Created,
					outcome.Reconcile.Skipped, outcome.Reconcile.Errors)
			}

			switch {
			case err != nil:
				if outcome.Record != nil {
					fmt.Fprintf(out, "Record %d (%s) failed during %s\n", outcome.Record.ID, outcome.Record.Title, outcome.Step)
				}
				return err
			case outcome.Step == "idle":
				fmt.Fprintln(out, "Nothing to process")
			case outcome.Step == "preview":
				fmt.Fprintf(out, "Would process record %d: %s\n", outcome.Record.ID, outcome.Record.Title)
			case outcome.Record != nil:
				fmt.Fprintf(out, "Uploaded record %d: %s\n", outcome.Record.ID, outcome.Record.Title)
				if outcome.Record.PublishedURL != "" {
					fmt.Fprintf(out, "Watch: %s\n", outcome.Record.PublishedURL)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Report the next record without processing it")
	cmd.Flags().BoolVar(&skipReconcile, "skip-reconcile", false, "Skip the inventory reconcile pass")
	cmd.Flags().IntVar(&reconcileLimit, "limit", 0, "Cap newly registered records for this run (0 = configured cap)")
	cmd.Flags().StringVar(&folderID, "folder", "", "Override the configured source folder ID")
	return cmd
}
