package config

import (
	"fmt"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGeneration()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerDir) == "" {
		c.Paths.LedgerDir = defaultLedgerDir
	}
	if c.Paths.LedgerDir, err = expandPath(c.Paths.LedgerDir); err != nil {
		return fmt.Errorf("paths.ledger_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGeneration() {
	if c.Generation.Workers <= 0 {
		c.Generation.Workers = runtime.NumCPU()
	}
	c.Generation.Preprocessing = strings.ToLower(strings.TrimSpace(c.Generation.Preprocessing))
	if c.Generation.Preprocessing == "" {
		c.Generation.Preprocessing = defaultPreprocessing
	}
	c.Generation.Tracer = strings.TrimSpace(c.Generation.Tracer)
	if c.Generation.Tracer == "" {
		c.Generation.Tracer = defaultTracer
	}
	c.Generation.SUVRReferenceRegion = strings.TrimSpace(c.Generation.SUVRReferenceRegion)
	if c.Generation.SUVRReferenceRegion == "" {
		c.Generation.SUVRReferenceRegion = defaultSUVRReferenceRegion
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
