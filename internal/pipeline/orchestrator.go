package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"steeple/internal/catalog"
	"steeple/internal/config"
	"steeple/internal/fetch"
	"steeple/internal/logging"
	"steeple/internal/publish"
	"steeple/internal/reconcile"
	"steeple/internal/services"
)

// ErrAlreadyRunning reports that another invocation holds the pipeline lock.
var ErrAlreadyRunning = errors.New("another pipeline invocation is already running")

// Fetcher downloads the asset behind a record's source link.
type Fetcher interface {
	Fetch(ctx context.Context, sourceLink string) (fetch.Result, error)
}

// Reconciler folds source inventory into the catalog ahead of selection.
type Reconciler interface {
	Reconcile(ctx context.Context, opts reconcile.Options) (reconcile.Summary, error)
}

// Options adjusts a single pipeline cycle.
type Options struct {
	// Preview reports the record that would be processed without claiming it.
	Preview bool
	// SkipReconcile selects from the catalog as-is.
	SkipReconcile bool
	// ReconcileLimit caps record creation for this cycle; zero uses the
	// configured cap.
	ReconcileLimit int
	// FolderID overrides the configured source folder.
	FolderID string
}

// Outcome reports what one cycle did.
type Outcome struct {
	// Step is the last step reached: reconcile, idle, preview, claim,
	// fetch, publish, or complete.
	Step      string
	Success   bool
	Record    *catalog.Record
	Reconcile reconcile.Summary
}

// Orchestrator runs one publishing cycle per invocation.
type Orchestrator struct {
	store      *catalog.Store
	driver     *Driver
	reconciler Reconciler
	fetcher    Fetcher
	target     publish.Target
	cfg        *config.Config
	logger     *slog.Logger
	lockPath   string
}

// NewOrchestrator wires the cycle's collaborators together.
func NewOrchestrator(store *catalog.Store, driver *Driver, reconciler Reconciler, fetcher Fetcher, target publish.Target, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:      store,
		driver:     driver,
		reconciler: reconciler,
		fetcher:    fetcher,
		target:     target,
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "orchestrator")),
		lockPath:   filepath.Join(cfg.Paths.DataDir, "steeple.lock"),
	}
}

// RunOnce executes at most one record through the pipeline. Concurrent
// invocations are excluded by a file lock; the loser returns
// ErrAlreadyRunning without touching the catalog.
func (o *Orchestrator) RunOnce(ctx context.Context, opts Options) (Outcome, error) {
	lock := flock.New(o.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return Outcome{}, fmt.Errorf("acquiring pipeline lock: %w", err)
	}
	if !locked {
		return Outcome{}, ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release pipeline lock", logging.Error(err))
		}
	}()

	correlationID := uuid.NewString()
	ctx = services.WithRequestID(ctx, correlationID)
	logger := o.logger.With(logging.String(logging.FieldCorrelationID, correlationID))

	if _, err := o.driver.ResetStuckProcessing(ctx); err != nil {
		logger.WarnContext(ctx, "stuck record reset failed", logging.Error(err))
	}

	outcome := Outcome{Step: "reconcile"}
	if !opts.SkipReconcile {
		summary, err := o.reconciler.Reconcile(ctx, reconcile.Options{FolderID: opts.FolderID, Limit: opts.ReconcileLimit})
		if err != nil {
			return outcome, fmt.Errorf("reconcile: %w", err)
		}
		outcome.Reconcile = summary
	}

	next, err := o.store.NextPending(ctx)
	if err != nil {
		return outcome, services.Wrap(services.ErrStoreUnavailable, "select", "next-pending", "failed to select next record", err)
	}
	if next == nil {
		logger.InfoContext(ctx, "no pending records")
		outcome.Step = "idle"
		outcome.Success = true
		return outcome, nil
	}

	if opts.Preview {
		outcome.Step = "preview"
		outcome.Success = true
		outcome.Record = next
		logger.InfoContext(ctx, "preview: next record",
			logging.Int64(logging.FieldRecordID, next.ID),
			logging.String("title", next.Title))
		return outcome, nil
	}

	outcome.Step = "claim"
	record, err := o.driver.Claim(ctx, next.ID)
	if err != nil {
		return outcome, err
	}
	if record == nil {
		outcome.Success = true
		return outcome, nil
	}
	outcome.Record = record
	ctx = services.WithRecordID(ctx, record.ID)
	logger = logger.With(logging.Int64(logging.FieldRecordID, record.ID))

	outcome.Step = "fetch"
	started := time.Now()
	asset, err := o.fetcher.Fetch(services.WithStep(ctx, "fetch"), record.SourceLink)
	if err != nil {
		o.recordFailure(ctx, logger, record, err)
		return outcome, err
	}
	defer o.removeAsset(logger, asset.Path)

	outcome.Step = "publish"
	result, err := o.upload(services.WithStep(ctx, "publish"), record, asset)
	if err != nil {
		o.recordFailure(ctx, logger, record, err)
		return outcome, err
	}

	outcome.Step = "complete"
	if err := o.driver.CompleteUpload(ctx, record, result.ID, result.URL, time.Since(started)); err != nil {
		// The upload succeeded but the catalog could not record it. Surface
		// loudly so the operator reconciles by hand instead of re-uploading.
		logger.ErrorContext(ctx, "upload succeeded but persisting the result failed",
			logging.Alert("manual reconciliation required"),
			logging.String("published_id", result.ID),
			logging.Error(err))
		return outcome, err
	}

	outcome.Success = true
	return outcome, nil
}

func (o *Orchestrator) upload(ctx context.Context, record *catalog.Record, asset fetch.Result) (publish.Result, error) {
	media, err := os.Open(asset.Path)
	if err != nil {
		return publish.Result{}, services.Wrap(services.ErrValidation, "publish", "open-asset", "failed to open fetched asset", err)
	}
	defer media.Close()

	metadata := publish.Metadata{
		Title:       record.Title,
		Description: record.Description,
		Tags:        publish.SplitTags(record.Tags),
		CategoryID:  publish.CategoryID(record.Category),
		Privacy:     publish.NormalizePrivacy(record.Privacy),
	}
	return o.target.Insert(ctx, metadata, media, asset.Size)
}

func (o *Orchestrator) recordFailure(ctx context.Context, logger *slog.Logger, record *catalog.Record, cause error) {
	if err := o.driver.Fail(ctx, record, cause); err != nil {
		logger.ErrorContext(ctx, "failed to persist failure state",
			logging.Alert("record may be stuck in processing"),
			logging.Error(err))
	}
}

func (o *Orchestrator) removeAsset(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove staged asset", logging.String("path", path), logging.Error(err))
	}
}
