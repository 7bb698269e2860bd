package leadconfirmation

import "fmt"

type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Brand   string `mapstructure:"brand"`
	// ReplyTo routes answers to the confirmation back to the team.
	ReplyTo string `mapstructure:"reply_to"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Brand:   "our team",
	}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return fmt.Errorf("lead confirmation disabled")
	}
	if c.Brand == "" {
		return fmt.Errorf("brand is required")
	}
	return nil
}
