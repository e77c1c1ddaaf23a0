package inventory

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Item is one file discovered in the external storage source.
type Item struct {
	SourceID      string
	DisplayName   string
	CanonicalLink string
	MimeType      string
	SizeBytes     int64
	CreatedAt     time.Time
}

// Source lists the inventory of a storage folder, newest first.
type Source interface {
	List(ctx context.Context, folderID string) ([]Item, error)
}

// DisplayName derives the record title from a raw file name by stripping the
// trailing extension.
func DisplayName(fileName string) string {
	base := strings.TrimSpace(fileName)
	ext := filepath.Ext(base)
	return strings.TrimSpace(strings.TrimSuffix(base, ext))
}

// CanonicalLink builds the deterministic reference for a source ID. The same
// ID always yields the same link, which makes the link usable as a dedup key.
func CanonicalLink(linkBase, sourceID string) string {
	return strings.TrimRight(linkBase, "/") + "/file/d/" + sourceID + "/view"
}
