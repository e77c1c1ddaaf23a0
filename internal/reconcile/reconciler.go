// Package reconcile registers newly discovered source items as catalog records.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"steeple/internal/catalog"
	"steeple/internal/config"
	"steeple/internal/inventory"
	"steeple/internal/logging"
)

// Store is the catalog surface the reconciler depends on.
type Store interface {
	ExistingKeys(ctx context.Context) (titles map[string]struct{}, links map[string]struct{}, err error)
	Create(ctx context.Context, record catalog.NewRecord) (*catalog.Record, error)
}

// Options adjusts a single reconcile pass.
type Options struct {
	// FolderID overrides the configured source folder when non-empty.
	FolderID string
	// Limit caps how many new records one pass may create. Zero means the
	// configured cap; negative means unlimited.
	Limit int
}

// Summary reports what one pass did.
type Summary struct {
	Discovered int
	Created    int
	Skipped    int
	Errors     int
}

// Reconciler folds source inventory into the catalog.
type Reconciler struct {
	source          inventory.Source
	store           Store
	logger          *slog.Logger
	folderID        string
	maxNewRecords   int
	defaultCategory string
	defaultPrivacy  string
}

// New builds a reconciler using the configured defaults for new records.
func New(source inventory.Source, store Store, cfg *config.Config, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		source:          source,
		store:           store,
		logger:          logger.With(logging.String(logging.FieldComponent, "reconcile")),
		folderID:        cfg.Source.FolderID,
		maxNewRecords:   cfg.Reconcile.MaxNewRecords,
		defaultCategory: cfg.Publish.DefaultCategory,
		defaultPrivacy:  cfg.Publish.DefaultPrivacy,
	}
}

// Reconcile lists the source folder and registers every item not already
// tracked. Items beyond the per-pass cap stay unregistered until a later
// pass. A failure registering one item does not abort the rest.
func (r *Reconciler) Reconcile(ctx context.Context, opts Options) (Summary, error) {
	folderID := opts.FolderID
	if folderID == "" {
		folderID = r.folderID
	}
	limit := opts.Limit
	if limit == 0 {
		limit = r.maxNewRecords
	}

	items, err := r.source.List(ctx, folderID)
	if err != nil {
		return Summary{}, fmt.Errorf("listing source folder: %w", err)
	}

	titles, links, err := r.store.ExistingKeys(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("loading existing catalog keys: %w", err)
	}

	summary := Summary{Discovered: len(items)}
	for _, item := range items {
		if limit > 0 && summary.Created >= limit {
			break
		}

		title := item.DisplayName
		normalized := catalog.NormalizeTitle(title)
		if _, seen := titles[normalized]; seen {
			summary.Skipped++
			continue
		}
		if _, seen := links[item.CanonicalLink]; seen {
			summary.Skipped++
			continue
		}

		record, err := r.store.Create(ctx, catalog.NewRecord{
			Title:      title,
			SourceLink: item.CanonicalLink,
			Category:   r.defaultCategory,
			Privacy:    r.defaultPrivacy,
			SizeBytes:  item.SizeBytes,
		})
		if err != nil {
			summary.Errors++
			r.logger.ErrorContext(ctx, "failed to register source item",
				logging.String("source_id", item.SourceID),
				logging.String("title", title),
				logging.Error(err))
			continue
		}

		// Items created in this pass also guard against duplicates later in
		// the same listing.
		titles[normalized] = struct{}{}
		links[item.CanonicalLink] = struct{}{}

		summary.Created++
		r.logger.InfoContext(ctx, "registered new record",
			logging.Int64(logging.FieldRecordID, record.ID),
			logging.String("title", record.Title))
	}

	r.logger.InfoContext(ctx, "reconcile pass finished",
		logging.Int("discovered", summary.Discovered),
		logging.Int("created", summary.Created),
		logging.Int("skipped", summary.Skipped),
		logging.Int("errors", summary.Errors))
	return summary, nil
}
