package workflowstart

import "fmt"

type Config struct {
	// ProcessID is the BPMN process id started for each lead.
	ProcessID string `mapstructure:"process_id"`
}

func DefaultConfig() *Config {
	return &Config{}
}

func (c *Config) Validate() error {
	if c.ProcessID == "" {
		return fmt.Errorf("process_id is required")
	}
	return nil
}
