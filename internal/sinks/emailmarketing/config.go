package emailmarketing

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey        string        `mapstructure:"api_key"`
	ListID        int64         `mapstructure:"list_id"`
	BaseURL       string        `mapstructure:"base_url"`
	UpdateEnabled bool          `mapstructure:"update_enabled"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		UpdateEnabled: true,
		Timeout:       10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.ListID < 0 {
		return fmt.Errorf("list_id must not be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
