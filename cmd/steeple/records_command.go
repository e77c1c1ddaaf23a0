package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"steeple/internal/catalog"
	"steeple/internal/config"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect the record catalog",
	}

	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	recordsCmd.AddCommand(newRecordsStatsCommand(ctx))
	recordsCmd.AddCommand(newRecordsHealthCommand(ctx))

	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally filtered by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []catalog.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				status, ok := catalog.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q (valid: pending, processing, uploaded, error)", trimmed)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				records, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No records found")
					return nil
				}

				colorize := isTerminal(cmd.OutOrStdout())
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					lastError := record.LastError
					if len(lastError) > 40 {
						lastError = lastError[:37] + "..."
					}
					rows = append(rows, []string{
						strconv.FormatInt(record.ID, 10),
						record.Title,
						colorStatus(string(record.Status), colorize),
						strconv.Itoa(record.Attempts),
						lastError,
					})
				}
				headers := []string{"ID", "Title", "Status", "Attempts", "Last Error"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by status")
	return cmd
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	var showEvents bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", args[0])
			}

			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				record, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("no record with id %d", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %d\n", record.ID)
				fmt.Fprintf(out, "Title:       %s\n", record.Title)
				fmt.Fprintf(out, "Status:      %s\n", record.Status)
				fmt.Fprintf(out, "Source:      %s\n", record.SourceLink)
				fmt.Fprintf(out, "Category:    %s\n", record.Category)
				fmt.Fprintf(out, "Privacy:     %s\n", record.Privacy)
				fmt.Fprintf(out, "Attempts:    %d\n", record.Attempts)
				if record.SizeBytes > 0 {
					fmt.Fprintf(out, "Size:        %s\n", humanize.Bytes(uint64(record.SizeBytes)))
				}
				if record.LastError != "" {
					fmt.Fprintf(out, "Last error:  %s\n", record.LastError)
				}
				if record.ErrorAt != nil {
					fmt.Fprintf(out, "Errored at:  %s\n", record.ErrorAt.Local().Format(time.RFC1123))
				}
				if record.PublishedURL != "" {
					fmt.Fprintf(out, "Published:   %s\n", record.PublishedURL)
					fmt.Fprintf(out, "Upload took: %.0fs\n", record.UploadDurationSecs)
				}
				fmt.Fprintf(out, "Created:     %s\n", record.CreatedAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Updated:     %s\n", record.UpdatedAt.Local().Format(time.RFC1123))

				if showEvents {
					events, err := store.Events(cmd.Context(), record.ID)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, "\nHistory:")
					for _, event := range events {
						fmt.Fprintf(out, "  %s  %s\n", event.CreatedAt.Local().Format("2006-01-02 15:04:05"), event.Note)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showEvents, "events", false, "Include the record's audit trail")
	return cmd
}

func newRecordsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(stats))
				total := 0
				for _, status := range catalog.AllStatuses() {
					count := stats[status]
					total += count
					rows = append(rows, []string{string(status), strconv.Itoa(count)})
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func newRecordsHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check catalog database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:        %s\n", health.DBPath)
				fmt.Fprintf(out, "Exists:          %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable:        %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Schema present:  %s\n", yesNo(health.TableExists))
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Total records:   %d\n", health.TotalRecords)
				if health.Error != "" {
					fmt.Fprintf(out, "Error:           %s\n", health.Error)
				}
				return nil
			})
		},
	}
}
