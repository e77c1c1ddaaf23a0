package publish

import (
	"strings"
	"testing"
)

func TestCategoryIDResolvesKnownAndUnknown(t *testing.T) {
	if got := CategoryID("Education"); got != "27" {
		t.Fatalf("CategoryID(Education) = %s, want 27", got)
	}
	if got := CategoryID("  music "); got != "10" {
		t.Fatalf("CategoryID(music) = %s, want 10", got)
	}
	if got := CategoryID("interpretive dance"); got != "27" {
		t.Fatalf("unknown category should fall back to 27, got %s", got)
	}
}

func TestNormalizePrivacy(t *testing.T) {
	cases := map[string]string{
		"Public":   "public",
		"UNLISTED": "unlisted",
		"private":  "private",
		"secret":   "public",
		"":         "public",
	}
	for input, want := range cases {
		if got := NormalizePrivacy(input); got != want {
			t.Errorf("NormalizePrivacy(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestClampEnforcesLimits(t *testing.T) {
	meta := Metadata{
		Title:       strings.Repeat("t", 150),
		Description: strings.Repeat("d", 6000),
		Tags:        []string{strings.Repeat("a", 300), strings.Repeat("b", 150), strings.Repeat("c", 200)},
		Privacy:     "Unlisted",
	}
	meta.Clamp()

	if len(meta.Title) != 100 {
		t.Fatalf("title length = %d, want 100", len(meta.Title))
	}
	if len(meta.Description) != 5000 {
		t.Fatalf("description length = %d, want 5000", len(meta.Description))
	}
	total := 0
	for _, tag := range meta.Tags {
		total += len(tag)
	}
	if total > 500 {
		t.Fatalf("tags total %d exceeds 500", total)
	}
	if len(meta.Tags) != 2 {
		t.Fatalf("expected third tag dropped, kept %d tags", len(meta.Tags))
	}
	if meta.Privacy != "unlisted" {
		t.Fatalf("privacy = %q, want unlisted", meta.Privacy)
	}
}

func TestClampDropsEmptyTags(t *testing.T) {
	meta := Metadata{Title: "ok", Tags: []string{" ", "sermon", ""}}
	meta.Clamp()
	if len(meta.Tags) != 1 || meta.Tags[0] != "sermon" {
		t.Fatalf("tags = %v, want [sermon]", meta.Tags)
	}
}

func TestSplitTags(t *testing.T) {
	tags := SplitTags("faith, hope , ,charity")
	if len(tags) != 3 || tags[0] != "faith" || tags[1] != "hope" || tags[2] != "charity" {
		t.Fatalf("SplitTags = %v", tags)
	}
	if got := SplitTags("   "); got != nil {
		t.Fatalf("blank input should yield nil, got %v", got)
	}
}
