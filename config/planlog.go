package config

import (
	"fmt"
)

// PlanLogConfig defines where plan decisions are recorded.
type PlanLogConfig struct {
	// Backend selects the store type: "jsonl", "jsonl_rotating", "memory"
	// or "none".
	Backend string `json:"backend"`
	// Path is the file location of the jsonl stores.
	Path string `json:"path"`
	// MaxSizeMB, MaxBackups and MaxAgeDays drive jsonl_rotating.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *PlanLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if (c.Backend == "jsonl" || c.Backend == "jsonl_rotating") && c.Path == "" {
		c.Path = "productionplan.log"
	}
	if c.Backend == "jsonl_rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
}

// Validate checks mandatory fields.
func (c PlanLogConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "jsonl_rotating":
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
		if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
			return fmt.Errorf("rotation settings must not be negative")
		}
	case "memory", "none":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}
