package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/dispatch"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/mqtt"
)

// Config is the root configuration of the dispatch engine.
type Config struct {
	// FleetFile points at the technician fleet file backing the CLI
	// directory.
	FleetFile string          `json:"fleet_file"`
	Dispatch  dispatch.Config `json:"dispatch"`
	Metrics   metrics.Config  `json:"metrics"`
	MQTT      mqtt.Config     `json:"mqtt"`
}

// Load reads the configuration from a YAML or JSON file, applies FS_
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Dispatch.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
