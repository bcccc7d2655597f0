package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGeneration() error {
	switch c.Generation.Preprocessing {
	case "t1-linear", "pet-linear":
	default:
		return fmt.Errorf("generation.preprocessing must be t1-linear or pet-linear, got %q", c.Generation.Preprocessing)
	}
	if c.Generation.GammaLow < -1 || c.Generation.GammaLow > 1 {
		return errors.New("generation.gamma_low must be between -1 and 1")
	}
	if c.Generation.GammaHigh < -1 || c.Generation.GammaHigh > 1 {
		return errors.New("generation.gamma_high must be between -1 and 1")
	}
	if c.Generation.GammaLow > c.Generation.GammaHigh {
		return errors.New("generation.gamma_low must not exceed generation.gamma_high")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
