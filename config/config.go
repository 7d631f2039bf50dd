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

	"github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/mqtt"
)

type Config struct {
	Server  ServerConfig   `json:"server"`
	Plant   PlantConfig    `json:"plant"`
	Metrics metrics.Config `json:"metrics"`
	PlanLog PlanLogConfig  `json:"planlog"`
	MQTT    mqtt.Config    `json:"mqtt"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
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
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	c.Server.SetDefaults()
	c.Plant.SetDefaults()
	c.PlanLog.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Plant.Validate(); err != nil {
		return fmt.Errorf("plant: %w", err)
	}
	if err := c.PlanLog.Validate(); err != nil {
		return fmt.Errorf("planlog: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
