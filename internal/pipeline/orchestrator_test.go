package pipeline_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"steeple/internal/catalog"
	"steeple/internal/fetch"
	"steeple/internal/logging"
	"steeple/internal/pipeline"
	"steeple/internal/publish"
	"steeple/internal/reconcile"
	"steeple/internal/services"
	"steeple/internal/testsupport"
)

type stubReconciler struct {
	calls   int
	summary reconcile.Summary
	err     error
}

func (s *stubReconciler) Reconcile(ctx context.Context, opts reconcile.Options) (reconcile.Summary, error) {
	s.calls++
	return s.summary, s.err
}

type stubFetcher struct {
	dir   string
	data  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, sourceLink string) (fetch.Result, error) {
	s.calls++
	if s.err != nil {
		return fetch.Result{}, s.err
	}
	path := filepath.Join(s.dir, "asset.mp4")
	if err := os.WriteFile(path, []byte(s.data), 0o644); err != nil {
		return fetch.Result{}, err
	}
	return fetch.Result{Path: path, Name: "asset.mp4", Size: int64(len(s.data))}, nil
}

type stubTarget struct {
	result   publish.Result
	err      error
	metadata publish.Metadata
	media    []byte
	calls    int
}

func (s *stubTarget) Insert(ctx context.Context, metadata publish.Metadata, media io.Reader, size int64) (publish.Result, error) {
	s.calls++
	s.metadata = metadata
	s.media, _ = io.ReadAll(media)
	if s.err != nil {
		return publish.Result{}, s.err
	}
	return s.result, nil
}

func newOrchestrator(t *testing.T, fetcher *stubFetcher, target *stubTarget, reconciler *stubReconciler) (*pipeline.Orchestrator, *catalog.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if fetcher.dir == "" {
		fetcher.dir = cfg.Paths.StagingDir
	}
	driver := pipeline.NewDriver(store, &recordingNotifier{}, cfg, logging.NewNop())
	orch := pipeline.NewOrchestrator(store, driver, reconciler, fetcher, target, cfg, logging.NewNop())
	return orch, store
}

func TestRunOnceProcessesOneRecord(t *testing.T) {
	fetcher := &stubFetcher{data: "video-bytes"}
	target := &stubTarget{result: publish.Result{ID: "vid1", URL: "https://tube.example.com/watch?v=vid1"}}
	orch, store := newOrchestrator(t, fetcher, target, &stubReconciler{})

	first := testsupport.NewPendingRecord(t, store, "Alpha Sermon", "https://drive.example.com/file/d/a1/view")
	testsupport.NewPendingRecord(t, store, "Beta Sermon", "https://drive.example.com/file/d/b2/view")

	outcome, err := orch.RunOnce(context.Background(), pipeline.Options{SkipReconcile: true})
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !outcome.Success || outcome.Step != "complete" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Record == nil || outcome.Record.ID != first.ID {
		t.Fatalf("processed wrong record: %+v", outcome.Record)
	}

	stored, err := store.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != catalog.StatusUploaded || stored.PublishedID != "vid1" {
		t.Fatalf("stored = %+v", stored)
	}
	if string(target.media) != "video-bytes" {
		t.Fatalf("uploaded media = %q", string(target.media))
	}
	if target.metadata.CategoryID == "" || target.metadata.Privacy == "" {
		t.Fatalf("metadata not populated: %+v", target.metadata)
	}

	// Exactly one record per invocation.
	others, err := store.List(context.Background(), catalog.StatusPending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(others) != 1 {
		t.Fatalf("pending after run = %d, want 1", len(others))
	}

	// Staged asset is cleaned up after upload.
	if _, err := os.Stat(filepath.Join(fetcher.dir, "asset.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged asset not removed: %v", err)
	}
}

func TestRunOnceIdleWhenNothingPending(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubFetcher{data: "x"}, &stubTarget{}, &stubReconciler{})

	outcome, err := orch.RunOnce(context.Background(), pipeline.Options{SkipReconcile: true})
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !outcome.Success || outcome.Step != "idle" {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestRunOncePreviewLeavesRecordPending(t *testing.T) {
	fetcher := &stubFetcher{data: "x"}
	target := &stubTarget{}
	orch, store := newOrchestrator(t, fetcher, target, &stubReconciler{})
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	outcome, err := orch.RunOnce(context.Background(), pipeline.Options{Preview: true, SkipReconcile: true})
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if outcome.Step != "preview" || outcome.Record == nil || outcome.Record.ID != record.ID {
		t.Fatalf("outcome = %+v", outcome)
	}
	if fetcher.calls != 0 || target.calls != 0 {
		t.Fatal("preview must not fetch or publish")
	}

	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != catalog.StatusPending {
		t.Fatalf("status = %s, want pending", stored.Status)
	}
}

func TestRunOnceRecordsFetchFailure(t *testing.T) {
	fetchErr := services.Wrap(services.ErrFetchExhausted, "fetch", "download", "all candidates failed", nil)
	orch, store := newOrchestrator(t, &stubFetcher{err: fetchErr}, &stubTarget{}, &stubReconciler{})
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	outcome, err := orch.RunOnce(context.Background(), pipeline.Options{SkipReconcile: true})
	if !errors.Is(err, services.ErrFetchExhausted) {
		t.Fatalf("err = %v, want fetch exhausted", err)
	}
	if outcome.Step != "fetch" {
		t.Fatalf("outcome = %+v", outcome)
	}

	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != catalog.StatusError || stored.Attempts != 1 || stored.LastError == "" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestRunOnceRecordsPublishFailureAndCleansAsset(t *testing.T) {
	fetcher := &stubFetcher{data: "video-bytes"}
	target := &stubTarget{err: services.Wrap(services.ErrPublishRejected, "publish", "insert", "quota exceeded", nil)}
	orch, store := newOrchestrator(t, fetcher, target, &stubReconciler{})
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	_, err := orch.RunOnce(context.Background(), pipeline.Options{SkipReconcile: true})
	if !errors.Is(err, services.ErrPublishRejected) {
		t.Fatalf("err = %v, want publish rejected", err)
	}

	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != catalog.StatusError {
		t.Fatalf("status = %s, want error", stored.Status)
	}
	if _, err := os.Stat(filepath.Join(fetcher.dir, "asset.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged asset not removed: %v", err)
	}
}

func TestRunOnceReconcilesBeforeSelecting(t *testing.T) {
	reconciler := &stubReconciler{summary: reconcile.Summary{Created: 3}}
	orch, _ := newOrchestrator(t, &stubFetcher{data: "x"}, &stubTarget{}, reconciler)

	outcome, err := orch.RunOnce(context.Background(), pipeline.Options{})
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if reconciler.calls != 1 {
		t.Fatalf("reconciler calls = %d, want 1", reconciler.calls)
	}
	if outcome.Reconcile.Created != 3 {
		t.Fatalf("outcome.Reconcile = %+v", outcome.Reconcile)
	}

	if _, err := orch.RunOnce(context.Background(), pipeline.Options{SkipReconcile: true}); err != nil {
		t.Fatalf("RunOnce skip: %v", err)
	}
	if reconciler.calls != 1 {
		t.Fatal("SkipReconcile must not reconcile")
	}
}
