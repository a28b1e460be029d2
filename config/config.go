// Package config loads viewer settings from a YAML file with environment
// variable overrides (PAGEKIT_*).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/docview/pagekit/viewer"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides: PAGEKIT_SCALE_STEP -> scale_step, etc.
// A missing file is not an error; defaults apply.
func Load(path string) (viewer.Config, error) {
	k := koanf.New(".")
	cfg := viewer.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("PAGEKIT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PAGEKIT_"))
	}), nil); err != nil {
		return cfg, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration contains workable values.
func Validate(cfg viewer.Config) error {
	if cfg.ContainerID == "" {
		return fmt.Errorf("container_id is required")
	}
	if cfg.PreloadPages < 0 {
		return fmt.Errorf("preload_pages must be non-negative")
	}
	if cfg.RenderTimeoutMS < 0 {
		return fmt.Errorf("render_timeout_ms must be non-negative")
	}
	if cfg.ScaleStep <= 0 || cfg.ScaleStep >= 1 {
		return fmt.Errorf("scale_step must be between 0 and 1 exclusive, got %v", cfg.ScaleStep)
	}
	return nil
}
