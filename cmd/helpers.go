package cmd

import (
	"fmt"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/config"
	"github.com/aibandobast/bandobast/internal/db"
	"github.com/aibandobast/bandobast/internal/manifest"
	"github.com/aibandobast/bandobast/internal/progress"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `bandobast init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openDatabase opens the portal database named by cfg.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	return database, nil
}

// newManifestService wires the builder for cfg. A nil reporter disables
// progress output.
func newManifestService(cfg *config.Config, auditStore *audit.Store, reporter progress.Reporter) (*manifest.Service, error) {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	b := &manifest.Builder{
		Root:     cfg.InboxDir,
		BaseDir:  cfg.BaseDir,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		Reporter: reporter,
		Logger:   logger,
	}
	return manifest.NewService(b, cfg.DataDir, auditStore, logger)
}
