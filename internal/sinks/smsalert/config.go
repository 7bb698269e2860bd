package smsalert

import (
	"fmt"

	"lead-intake/internal/common/validation"
)

type Config struct {
	Enabled    bool   `mapstructure:"enabled"`
	AlertPhone string `mapstructure:"alert_phone"`
	SenderID   string `mapstructure:"sender_id"`
}

func DefaultConfig() *Config {
	return &Config{}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return fmt.Errorf("sms alerts disabled")
	}
	if !validation.IsE164(c.AlertPhone) {
		return fmt.Errorf("alert_phone must be E.164")
	}
	if len(c.SenderID) > 11 {
		return fmt.Errorf("sender_id must be at most 11 characters")
	}
	return nil
}
