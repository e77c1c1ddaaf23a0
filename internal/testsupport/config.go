package testsupport

import (
	"path/filepath"
	"testing"

	"steeple/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Source.APIKey = "test-source-key"
	cfg.Source.FolderID = "test-folder"
	cfg.Publish.APIKey = "test-publish-key"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDownloadMirrors overrides the fetch candidate mirror prefixes.
func WithDownloadMirrors(mirrors ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fetch.DownloadMirrors = mirrors
	}
}

// WithReconcileCap sets the per-pass record creation cap.
func WithReconcileCap(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Reconcile.MaxNewRecords = limit
	}
}
