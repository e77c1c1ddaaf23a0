package inventory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"steeple/internal/inventory"
)

func TestDisplayNameStripsExtension(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sermon 1.mp4", "Sermon 1"},
		{"  Evening Service.MOV  ", "Evening Service"},
		{"no-extension", "no-extension"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := inventory.DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalLinkIsDeterministic(t *testing.T) {
	link := inventory.CanonicalLink("https://drive.google.com/", "abc123")
	if link != "https://drive.google.com/file/d/abc123/view" {
		t.Fatalf("unexpected canonical link %q", link)
	}
	if link != inventory.CanonicalLink("https://drive.google.com", "abc123") {
		t.Fatal("expected identical links regardless of trailing slash")
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected api key on request, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files":[
            {"id":"older","name":"Sermon 1.mp4","mimeType":"video/mp4","size":"100","createdTime":"2026-01-01T10:00:00Z"},
            {"id":"newer","name":"Sermon 2.mp4","mimeType":"video/mp4","size":"200","createdTime":"2026-02-01T10:00:00Z"},
            {"id":"","name":"ghost.mp4"}
        ]}`))
	}))
	defer server.Close()

	client, err := inventory.New(server.URL, "test-key", "https://drive.google.com", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	items, err := client.List(context.Background(), "folder-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].SourceID != "newer" || items[1].SourceID != "older" {
		t.Fatalf("expected newest first, got %v", items)
	}
	if items[0].DisplayName != "Sermon 2" {
		t.Fatalf("unexpected display name %q", items[0].DisplayName)
	}
	if items[1].SizeBytes != 100 {
		t.Fatalf("expected size 100, got %d", items[1].SizeBytes)
	}
	if items[0].CanonicalLink != "https://drive.google.com/file/d/newer/view" {
		t.Fatalf("unexpected link %q", items[0].CanonicalLink)
	}
}

func TestListRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	}))
	defer server.Close()

	client, err := inventory.New(server.URL, "test-key", "https://drive.google.com", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.List(context.Background(), "folder-1"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestListRequiresFolder(t *testing.T) {
	client, err := inventory.New("https://example.test", "key", "https://drive.google.com", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.List(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty folder id")
	}
}
