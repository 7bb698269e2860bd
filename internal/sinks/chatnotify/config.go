package chatnotify

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	BotToken  string        `mapstructure:"bot_token"`
	ChannelID string        `mapstructure:"channel_id"`
	APIURL    string        `mapstructure:"api_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot_token is required")
	}
	if !strings.HasPrefix(c.BotToken, "xoxb-") {
		return fmt.Errorf("bot_token must be a bot token (xoxb-)")
	}
	if c.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
