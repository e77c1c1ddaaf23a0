package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"steeple/internal/catalog"
	"steeple/internal/config"
	"steeple/internal/logging"
	"steeple/internal/notifications"
	"steeple/internal/services"
)

// Driver owns record lifecycle transitions. Each transition is persisted
// before any dependent side effect runs, so a crash mid-cycle leaves the
// record in a state the next invocation can reason about.
type Driver struct {
	store    *catalog.Store
	notifier notifications.Service
	logger   *slog.Logger
	cfg      *config.Config
}

// NewDriver wires lifecycle transitions to the catalog and notifier.
func NewDriver(store *catalog.Store, notifier notifications.Service, cfg *config.Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Driver{
		store:    store,
		notifier: notifier,
		logger:   logger.With(logging.String(logging.FieldComponent, "pipeline")),
		cfg:      cfg,
	}
}

// Claim transitions a pending record to processing. It returns nil when
// another invocation claimed the record first.
func (d *Driver) Claim(ctx context.Context, id int64) (*catalog.Record, error) {
	record, err := d.store.ClaimPending(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "claim", "update", "failed to claim record", err)
	}
	if record == nil {
		d.logger.InfoContext(ctx, "record claimed elsewhere", logging.Int64(logging.FieldRecordID, id))
		return nil, nil
	}
	if err := d.store.AppendEvent(ctx, record.ID, "claimed for processing"); err != nil {
		d.logger.WarnContext(ctx, "failed to append claim event", logging.Error(err))
	}
	return record, nil
}

// CompleteUpload marks the record uploaded and records the publish result.
func (d *Driver) CompleteUpload(ctx context.Context, record *catalog.Record, publishedID, publishedURL string, elapsed time.Duration) error {
	record.SetUploaded(publishedID, publishedURL, elapsed)
	if err := d.store.Update(ctx, record); err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "complete", "update", "failed to persist uploaded state", err)
	}
	if err := d.store.AppendEvent(ctx, record.ID, fmt.Sprintf("uploaded as %s", publishedID)); err != nil {
		d.logger.WarnContext(ctx, "failed to append upload event", logging.Error(err))
	}
	if err := d.notifier.NotifyUploadCompleted(ctx, record.Title, publishedURL); err != nil {
		d.logger.WarnContext(ctx, "upload notification failed", logging.Error(err))
	}
	d.logger.InfoContext(ctx, "record uploaded",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.String("published_id", publishedID),
		logging.Duration("upload_duration", elapsed))
	return nil
}

// Fail marks the record errored, keeping the failure reason and bumping the
// attempt counter.
func (d *Driver) Fail(ctx context.Context, record *catalog.Record, cause error) error {
	message := "unknown failure"
	if cause != nil {
		message = cause.Error()
	}
	record.SetFailed(message)
	if err := d.store.Update(ctx, record); err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "fail", "update", "failed to persist error state", err)
	}
	if err := d.store.AppendEvent(ctx, record.ID, "failed: "+record.LastError); err != nil {
		d.logger.WarnContext(ctx, "failed to append failure event", logging.Error(err))
	}
	if err := d.notifier.NotifyRecordFailed(ctx, record.Title, record.Attempts, cause); err != nil {
		d.logger.WarnContext(ctx, "failure notification failed", logging.Error(err))
	}
	d.logger.ErrorContext(ctx, "record failed",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.Int("attempts", record.Attempts),
		logging.Error(cause))
	return nil
}

// ResetStaleErrors returns errored records older than the configured
// retention to pending so a later cycle retries them.
func (d *Driver) ResetStaleErrors(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-d.cfg.ErrorRetention())
	count, err := d.store.ResetStaleErrors(ctx, cutoff)
	if err != nil {
		return 0, services.Wrap(services.ErrStoreUnavailable, "maintenance", "reset-errors", "failed to reset stale errors", err)
	}
	if count > 0 {
		d.logger.InfoContext(ctx, "reset stale errors", logging.Int64("count", count))
		if err := d.notifier.NotifyErrorsReset(ctx, count); err != nil {
			d.logger.WarnContext(ctx, "reset notification failed", logging.Error(err))
		}
	}
	return count, nil
}

// ResetStuckProcessing returns records abandoned mid-processing to pending.
func (d *Driver) ResetStuckProcessing(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-d.cfg.ProcessingTimeout())
	count, err := d.store.ResetStuckProcessing(ctx, cutoff)
	if err != nil {
		return 0, services.Wrap(services.ErrStoreUnavailable, "maintenance", "reset-processing", "failed to reset stuck records", err)
	}
	if count > 0 {
		d.logger.WarnContext(ctx, "reset stuck processing records", logging.Int64("count", count))
	}
	return count, nil
}
