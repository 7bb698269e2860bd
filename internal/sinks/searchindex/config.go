package searchindex

import (
	"fmt"
	"strings"
)

type Config struct {
	Index string `mapstructure:"index"`
	// Refresh is passed through to the index API ("true", "false", "wait_for").
	Refresh string `mapstructure:"refresh"`
}

func DefaultConfig() *Config {
	return &Config{
		Index:   "leads",
		Refresh: "false",
	}
}

func (c *Config) Validate() error {
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}
	if c.Index != strings.ToLower(c.Index) {
		return fmt.Errorf("index must be lowercase")
	}
	switch c.Refresh {
	case "", "true", "false", "wait_for":
	default:
		return fmt.Errorf("refresh must be one of true, false, wait_for")
	}
	return nil
}
