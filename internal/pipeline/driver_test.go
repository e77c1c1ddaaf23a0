package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"steeple/internal/catalog"
	"steeple/internal/logging"
	"steeple/internal/pipeline"
	"steeple/internal/testsupport"
)

type recordingNotifier struct {
	uploads  []string
	failures []string
	resets   []int64
}

func (r *recordingNotifier) NotifyUploadCompleted(_ context.Context, title, _ string) error {
	r.uploads = append(r.uploads, title)
	return nil
}

func (r *recordingNotifier) NotifyRecordFailed(_ context.Context, title string, _ int, _ error) error {
	r.failures = append(r.failures, title)
	return nil
}

func (r *recordingNotifier) NotifyErrorsReset(_ context.Context, count int64) error {
	r.resets = append(r.resets, count)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func TestDriverClaimTransitionsToProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	driver := pipeline.NewDriver(store, &recordingNotifier{}, cfg, logging.NewNop())
	claimed, err := driver.Claim(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed == nil || claimed.Status != catalog.StatusProcessing {
		t.Fatalf("claimed = %+v, want processing", claimed)
	}
	if claimed.ClaimedAt == nil {
		t.Fatal("ClaimedAt should be set")
	}

	events, err := store.Events(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected a claim event")
	}

	// A second claim loses quietly.
	again, err := driver.Claim(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("second Claim: %v", err)
	}
	if again != nil {
		t.Fatal("second claim should return nil record")
	}
}

func TestDriverFailRecordsErrorAndNotifies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	notifier := &recordingNotifier{}
	driver := pipeline.NewDriver(store, notifier, cfg, logging.NewNop())
	claimed, err := driver.Claim(context.Background(), record.ID)
	if err != nil || claimed == nil {
		t.Fatalf("Claim: %v", err)
	}

	if err := driver.Fail(context.Background(), claimed, errors.New("download truncated")); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != catalog.StatusError {
		t.Fatalf("status = %s, want error", stored.Status)
	}
	if stored.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", stored.Attempts)
	}
	if stored.LastError != "download truncated" {
		t.Fatalf("lastError = %q", stored.LastError)
	}
	if stored.ErrorAt == nil {
		t.Fatal("ErrorAt should be set")
	}
	if len(notifier.failures) != 1 {
		t.Fatalf("failures notified = %d, want 1", len(notifier.failures))
	}
}

func TestDriverCompleteUploadClearsErrorBookkeeping(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	notifier := &recordingNotifier{}
	driver := pipeline.NewDriver(store, notifier, cfg, logging.NewNop())
	claimed, err := driver.Claim(context.Background(), record.ID)
	if err != nil || claimed == nil {
		t.Fatalf("Claim: %v", err)
	}
	claimed.LastError = "previous failure"

	if err := driver.CompleteUpload(context.Background(), claimed, "vid9", "https://tube.example.com/watch?v=vid9", 42*time.Second); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}

	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != catalog.StatusUploaded {
		t.Fatalf("status = %s, want uploaded", stored.Status)
	}
	if stored.PublishedID != "vid9" || stored.PublishedURL == "" {
		t.Fatalf("publish fields = %q %q", stored.PublishedID, stored.PublishedURL)
	}
	if stored.LastError != "" || stored.ErrorAt != nil || stored.ClaimedAt != nil {
		t.Fatalf("error bookkeeping not cleared: %+v", stored)
	}
	if len(notifier.uploads) != 1 {
		t.Fatalf("uploads notified = %d, want 1", len(notifier.uploads))
	}
}

func TestDriverResetStaleErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Maintenance.ErrorRetentionDays = 1
	store := testsupport.MustOpenStore(t, cfg)
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	notifier := &recordingNotifier{}
	driver := pipeline.NewDriver(store, notifier, cfg, logging.NewNop())
	claimed, err := driver.Claim(context.Background(), record.ID)
	if err != nil || claimed == nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := driver.Fail(context.Background(), claimed, errors.New("boom")); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	// Fresh errors stay put.
	count, err := driver.ResetStaleErrors(context.Background())
	if err != nil {
		t.Fatalf("ResetStaleErrors: %v", err)
	}
	if count != 0 {
		t.Fatalf("fresh error reset, count = %d", count)
	}

	// Age the error past retention directly in the record.
	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	stored.ErrorAt = &old
	if err := store.Update(context.Background(), stored); err != nil {
		t.Fatalf("Update: %v", err)
	}

	count, err = driver.ResetStaleErrors(context.Background())
	if err != nil {
		t.Fatalf("ResetStaleErrors: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	reset, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reset.Status != catalog.StatusPending || reset.Attempts != 0 || reset.LastError != "" {
		t.Fatalf("reset record = %+v", reset)
	}
	if len(notifier.resets) != 1 {
		t.Fatalf("reset notifications = %d, want 1", len(notifier.resets))
	}
}
