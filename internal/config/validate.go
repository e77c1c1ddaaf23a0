package config

import (
	"errors"
	"fmt"
	"strings"
)

var validPrivacyValues = map[string]struct{}{
	"public":   {},
	"unlisted": {},
	"private":  {},
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.StagingDir == "" {
		problems = append(problems, "paths.staging_dir must not be empty")
	}
	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if c.Source.BaseURL == "" {
		problems = append(problems, "source.base_url must not be empty")
	}
	if c.Publish.BaseURL == "" {
		problems = append(problems, "publish.base_url must not be empty")
	}
	if _, ok := validPrivacyValues[c.Publish.DefaultPrivacy]; !ok {
		problems = append(problems, fmt.Sprintf("publish.default_privacy %q must be one of public, unlisted, private", c.Publish.DefaultPrivacy))
	}
	if c.Reconcile.MaxNewRecords < 0 {
		problems = append(problems, "reconcile.max_new_records must not be negative")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// ValidateForRun checks the credentials required by a live pipeline run.
// Kept separate from Validate so read-only commands work without secrets.
func (c *Config) ValidateForRun() error {
	var problems []string
	if c.Source.APIKey == "" {
		problems = append(problems, "source.api_key is required to list and download assets")
	}
	if c.Source.FolderID == "" {
		problems = append(problems, "source.folder_id is required to reconcile the inventory")
	}
	if c.Publish.APIKey == "" {
		problems = append(problems, "publish.api_key is required to upload videos")
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
