package crmcontact

import (
	"fmt"
	"time"
)

type Config struct {
	OAuthToken string        `mapstructure:"oauth_token"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.OAuthToken == "" {
		return fmt.Errorf("oauth_token is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
