package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"steeple/internal/catalog"
	"steeple/internal/config"
	"steeple/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
data_dir = %q
log_dir = %q

[source]
base_url = %q
api_key = %q
folder_id = %q
link_base = %q

[publish]
base_url = %q
api_key = %q

[logging]
format = "json"
level = "info"
`,
		cfg.Paths.StagingDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Source.BaseURL,
		cfg.Source.APIKey,
		cfg.Source.FolderID,
		cfg.Source.LinkBase,
		cfg.Publish.BaseURL,
		cfg.Publish.APIKey,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func seedRecord(t *testing.T, cfg *config.Config, title, link string) *catalog.Record {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	return testsupport.NewPendingRecord(t, store, title, link)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
