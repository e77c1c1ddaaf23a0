package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"steeple/internal/catalog"
	"steeple/internal/config"
	"steeple/internal/fetch"
	"steeple/internal/inventory"
	"steeple/internal/logging"
	"steeple/internal/notifications"
	"steeple/internal/pipeline"
	"steeple/internal/publish"
	"steeple/internal/reconcile"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// withStore opens the catalog for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(cfg, store)
}

// buildOrchestrator wires the full pipeline from configuration. The caller
// owns closing the store.
func (c *commandContext) buildOrchestrator() (*pipeline.Orchestrator, *catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ValidateForRun(); err != nil {
		return nil, nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	source, err := inventory.New(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Source.LinkBase, cfg.ListTimeout())
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("build source client: %w", err)
	}

	notifier := notifications.NewService(cfg)
	driver := pipeline.NewDriver(store, notifier, cfg, logger)
	reconciler := reconcile.New(source, store, cfg, logger)
	fetcher := fetch.New(cfg, logger)
	target := publish.NewClient(cfg.Publish.BaseURL, cfg.Publish.APIKey, cfg.UploadTimeout(), logger)

	orch := pipeline.NewOrchestrator(store, driver, reconciler, fetcher, target, cfg, logger)
	return orch, store, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
