package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTasks(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if _, ok := defaultProviderModels[c.LLM.Provider]; !ok {
		return fmt.Errorf("llm.provider: unsupported value %q (want gemini, openai, or anthropic)", c.LLM.Provider)
	}
	if err := validateTemperature("llm.temperature", c.LLM.Temperature); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTasks() error {
	for kind, task := range c.Tasks {
		if task.Temperature != nil {
			if err := validateTemperature(fmt.Sprintf("tasks.%s.temperature", kind), *task.Temperature); err != nil {
				return err
			}
		}
		if task.MaxOutputTokens < 0 {
			return fmt.Errorf("tasks.%s.max_output_tokens must be positive", kind)
		}
	}
	return nil
}

func validateTemperature(field string, value float64) error {
	if value < 0 || value > 2 {
		return fmt.Errorf("%s must be between 0 and 2, got %v", field, value)
	}
	return nil
}
