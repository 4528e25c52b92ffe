package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.Root == "" {
		return errors.New("paths.root must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "text", "console", "json":
	default:
		return fmt.Errorf("logging.format must be text, console, or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
