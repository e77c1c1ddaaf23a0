package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"steeple/internal/catalog"
	"steeple/internal/config"
	"steeple/internal/inventory"
	"steeple/internal/reconcile"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var folderID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Register new source items as pending records without processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if err := cfg.ValidateForRun(); err != nil {
					return err
				}
				source, err := inventory.New(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Source.LinkBase, cfg.ListTimeout())
				if err != nil {
					return fmt.Errorf("build source client: %w", err)
				}

				reconciler := reconcile.New(source, store, cfg, logger)
				summary, err := reconciler.Reconcile(cmd.Context(), reconcile.Options{FolderID: folderID, Limit: limit})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Discovered %d, created %d, skipped %d, errors %d\n",
					summary.Discovered, summary.Created, summary.Skipped, summary.Errors)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Cap newly registered records (0 = configured cap)")
	cmd.Flags().StringVar(&folderID, "folder", "", "Override the configured source folder ID")
	return cmd
}
