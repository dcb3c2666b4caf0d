package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if math.IsNaN(c.Analysis.StartOffset) || math.IsInf(c.Analysis.StartOffset, 0) || c.Analysis.StartOffset < 0 {
		return errors.New("analysis.start_offset must be a non-negative number of seconds")
	}
	if c.Analysis.ThresholdDB >= 0 {
		return fmt.Errorf("analysis.threshold_db must be negative (got %d)", c.Analysis.ThresholdDB)
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.CRF < 0 || c.Export.CRF > 51 {
		return fmt.Errorf("export.crf must be between 0 and 51 (got %d)", c.Export.CRF)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retention_days must be zero or positive (got %d)", c.Logging.RetentionDays)
	}
	return nil
}
