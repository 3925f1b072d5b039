package config

import (
	"errors"
	"fmt"

	"qsomerge/internal/correlate"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateOutputs(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateInput() error {
	if c.Input.WorkedCallField < 6 {
		return fmt.Errorf("input.worked_call_field must be >= 6 (QSO: freq mode date time mycall precede it), got %d", c.Input.WorkedCallField)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.ToleranceMinutes < 0 {
		return errors.New("matching.tolerance_minutes must be >= 0")
	}
	if _, err := correlate.ParseModePolicy(c.Matching.ModePolicy); err != nil {
		return fmt.Errorf("matching.mode_policy: %w", err)
	}
	return nil
}

func (c *Config) validateOutputs() error {
	if c.Audit.Enabled && c.Audit.Path == "" {
		return errors.New("audit.path must be set when audit.enabled is true")
	}
	if c.Audit.Path == "-" || c.Metrics.TextfilePath == "-" {
		return errors.New("audit.path and metrics.textfile_path cannot be stdout")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
