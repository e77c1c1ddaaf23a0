package main

import (
	"strconv"
	"testing"
)

func TestRecordsListShowsSeededRecord(t *testing.T) {
	env := setupCLITestEnv(t)
	seedRecord(t, env.cfg, "Sunday Sermon", "https://drive.example.com/file/d/a1/view")

	out, _, err := runCLI(t, []string{"records", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("records list: %v", err)
	}
	requireContains(t, out, "Sunday Sermon")
	requireContains(t, out, "pending")
}

func TestRecordsListFiltersByStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	seedRecord(t, env.cfg, "Sunday Sermon", "https://drive.example.com/file/d/a1/view")

	out, _, err := runCLI(t, []string{"records", "list", "--status", "uploaded"}, env.configPath)
	if err != nil {
		t.Fatalf("records list: %v", err)
	}
	requireContains(t, out, "No records found")

	if _, _, err := runCLI(t, []string{"records", "list", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestRecordsShowPrintsDetail(t *testing.T) {
	env := setupCLITestEnv(t)
	record := seedRecord(t, env.cfg, "Sunday Sermon", "https://drive.example.com/file/d/a1/view")

	out, _, err := runCLI(t, []string{"records", "show", strconv.FormatInt(record.ID, 10)}, env.configPath)
	if err != nil {
		t.Fatalf("records show: %v", err)
	}
	requireContains(t, out, "Sunday Sermon")
	requireContains(t, out, "Status:      pending")
	requireContains(t, out, "https://drive.example.com/file/d/a1/view")
}

func TestRecordsStatsCountsByStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	seedRecord(t, env.cfg, "Sermon One", "https://drive.example.com/file/d/a1/view")
	seedRecord(t, env.cfg, "Sermon Two", "https://drive.example.com/file/d/b2/view")

	out, _, err := runCLI(t, []string{"records", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("records stats: %v", err)
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "2")
}

func TestRecordsHealthReportsDatabase(t *testing.T) {
	env := setupCLITestEnv(t)
	seedRecord(t, env.cfg, "Sermon One", "https://drive.example.com/file/d/a1/view")

	out, _, err := runCLI(t, []string{"records", "health"}, env.configPath)
	if err != nil {
		t.Fatalf("records health: %v", err)
	}
	requireContains(t, out, "Exists:          yes")
	requireContains(t, out, "Integrity check: yes")
	requireContains(t, out, "Total records:   1")
}
