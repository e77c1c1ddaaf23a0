package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
}

// Source contains configuration for the cloud file source holding raw videos.
type Source struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	FolderID    string `toml:"folder_id"`
	LinkBase    string `toml:"link_base"`
	ListTimeout int    `toml:"list_timeout"`
}

// Fetch contains configuration for asset download attempts.
type Fetch struct {
	// DownloadMirrors are URL prefixes; the source ID is appended to each to
	// form an ordered list of transport candidates.
	DownloadMirrors []string `toml:"download_mirrors"`
	AttemptTimeout  int      `toml:"attempt_timeout"`
	ChunkSizeKiB    int      `toml:"chunk_size_kib"`
}

// Publish contains configuration for the video platform uploads target.
type Publish struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	DefaultCategory string `toml:"default_category"`
	DefaultPrivacy  string `toml:"default_privacy"`
	UploadTimeout   int    `toml:"upload_timeout"`
}

// Reconcile contains configuration for inventory reconciliation passes.
type Reconcile struct {
	// MaxNewRecords caps how many records one pass may create; zero means no cap.
	MaxNewRecords int `toml:"max_new_records"`
}

// Maintenance contains configuration for administrative record resets.
type Maintenance struct {
	ErrorRetentionDays       int `toml:"error_retention_days"`
	ProcessingTimeoutMinutes int `toml:"processing_timeout_minutes"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for steeple.
//
// Configuration sections by subsystem:
//   - Paths: staging, data, and log directories
//   - Source: cloud file source listing API
//   - Fetch: download mirrors, per-attempt timeout, chunking
//   - Publish: video platform upload endpoint and metadata defaults
//   - Reconcile: creation cap per reconciliation pass
//   - Maintenance: stale error and stuck processing thresholds
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Source        Source        `toml:"source"`
	Fetch         Fetch         `toml:"fetch"`
	Publish       Publish       `toml:"publish"`
	Reconcile     Reconcile     `toml:"reconcile"`
	Maintenance   Maintenance   `toml:"maintenance"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/steeple/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("steeple.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories steeple needs to operate.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ListTimeout returns the source listing timeout as a duration.
func (c *Config) ListTimeout() time.Duration {
	return time.Duration(c.Source.ListTimeout) * time.Second
}

// FetchAttemptTimeout returns the per-candidate download timeout as a duration.
func (c *Config) FetchAttemptTimeout() time.Duration {
	return time.Duration(c.Fetch.AttemptTimeout) * time.Second
}

// UploadTimeout returns the publish upload timeout as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Publish.UploadTimeout) * time.Second
}

// ErrorRetention returns the age after which Error records may be reset.
func (c *Config) ErrorRetention() time.Duration {
	return time.Duration(c.Maintenance.ErrorRetentionDays) * 24 * time.Hour
}

// ProcessingTimeout returns the age after which Processing records count as stuck.
func (c *Config) ProcessingTimeout() time.Duration {
	return time.Duration(c.Maintenance.ProcessingTimeoutMinutes) * time.Minute
}

// NotificationTimeout bounds each ntfy publish request.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
