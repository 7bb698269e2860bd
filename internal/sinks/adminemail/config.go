package adminemail

import (
	"fmt"

	"lead-intake/internal/common/validation"
)

type Config struct {
	// To is the team inbox that receives every lead.
	To string `mapstructure:"to"`
	// ReplyToLead sets Reply-To to the lead's address so staff can answer directly.
	ReplyToLead bool   `mapstructure:"reply_to_lead"`
	Brand       string `mapstructure:"brand"`
}

func DefaultConfig() *Config {
	return &Config{
		ReplyToLead: true,
	}
}

func (c *Config) Validate() error {
	if c.To == "" {
		return fmt.Errorf("to is required")
	}
	if !validation.ValidateEmail(c.To) {
		return fmt.Errorf("to must be a valid email address")
	}
	return nil
}
