package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BANDOBAST_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// BANDOBAST_SERVER__PORT -> server.port
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validGroupings mirrors the groupings accepted by the KML exporter.
var validGroupings = map[string]bool{
	"":     true,
	"city": true,
	"ps":   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.InboxDir == "" {
		return fmt.Errorf("inbox_dir is required")
	}
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	inside, err := within(c.BaseDir, c.InboxDir)
	if err != nil {
		return err
	}
	if !inside {
		return fmt.Errorf("inbox_dir %q must be inside base_dir %q", c.InboxDir, c.BaseDir)
	}

	if !validGroupings[c.KML.Grouping] {
		return fmt.Errorf("invalid kml.grouping %q: must be one of city, ps", c.KML.Grouping)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Server.RebuildSchedule != "" {
		if _, err := cron.ParseStandard(c.Server.RebuildSchedule); err != nil {
			return fmt.Errorf("invalid server.rebuild_schedule %q: %w", c.Server.RebuildSchedule, err)
		}
	}

	switch c.AI.Provider {
	case "", "openai", "ollama":
	default:
		return fmt.Errorf("invalid ai.provider %q: must be one of openai, ollama", c.AI.Provider)
	}
	if c.AI.RequestsPerMinute < 0 {
		return fmt.Errorf("ai.requests_per_minute must not be negative")
	}

	return nil
}

// within reports whether path lies inside (or equals) base.
func within(base, path string) (bool, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false, fmt.Errorf("resolving base_dir: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolving inbox_dir: %w", err)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

