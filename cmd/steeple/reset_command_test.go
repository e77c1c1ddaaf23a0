package main

import (
	"context"
	"testing"
	"time"

	"steeple/internal/catalog"
	"steeple/internal/testsupport"
)

func TestResetErrorsAllReturnsErroredToPending(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	claimed, err := store.ClaimPending(context.Background(), record.ID)
	if err != nil || claimed == nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	claimed.SetFailed("download truncated")
	if err := store.Update(context.Background(), claimed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Within retention: nothing resets without --all.
	out, _, err := runCLI(t, []string{"reset-errors"}, env.configPath)
	if err != nil {
		t.Fatalf("reset-errors: %v", err)
	}
	requireContains(t, out, "Reset 0 errored record(s)")

	out, _, err = runCLI(t, []string{"reset-errors", "--all"}, env.configPath)
	if err != nil {
		t.Fatalf("reset-errors --all: %v", err)
	}
	requireContains(t, out, "Reset 1 errored record(s)")

	stored, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != catalog.StatusPending || stored.Attempts != 0 {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestResetErrorsStuckResetsAbandonedProcessing(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	record := testsupport.NewPendingRecord(t, store, "Sermon", "https://drive.example.com/file/d/a1/view")

	claimed, err := store.ClaimPending(context.Background(), record.ID)
	if err != nil || claimed == nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	old := time.Now().Add(-24 * time.Hour)
	claimed.ClaimedAt = &old
	if err := store.Update(context.Background(), claimed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	out, _, err := runCLI(t, []string{"reset-errors", "--stuck"}, env.configPath)
	if err != nil {
		t.Fatalf("reset-errors --stuck: %v", err)
	}
	requireContains(t, out, "Reset 1 stuck processing record(s)")
}
