package tasktracker

import (
	"fmt"
	"time"
)

// Custom field keys accepted in CustomFields; values are ClickUp field ids.
const (
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldSource   = "source"
	FieldLeadDate = "lead_date"
	FieldLeadID   = "lead_id"
)

type Config struct {
	APIKey       string            `mapstructure:"api_key"`
	ListID       string            `mapstructure:"list_id"`
	BaseURL      string            `mapstructure:"base_url"`
	CustomFields map[string]string `mapstructure:"custom_fields"`
	Timeout      time.Duration     `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.ListID == "" {
		return fmt.Errorf("list_id is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	for key := range c.CustomFields {
		switch key {
		case FieldEmail, FieldPhone, FieldSource, FieldLeadDate, FieldLeadID:
		default:
			return fmt.Errorf("unknown custom field key %q", key)
		}
	}
	return nil
}
