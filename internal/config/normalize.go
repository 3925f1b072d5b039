package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeInput(); err != nil {
		return err
	}
	c.normalizeMatching()
	if err := c.normalizeOutputs(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeInput() error {
	if strings.TrimSpace(c.Input.AnnotationsDir) == "" {
		if value, ok := os.LookupEnv("QSOMERGE_ANNOTATIONS_DIR"); ok {
			c.Input.AnnotationsDir = value
		}
	}
	var err error
	if c.Input.AnnotationsDir, err = expandPath(strings.TrimSpace(c.Input.AnnotationsDir)); err != nil {
		return fmt.Errorf("input.annotations_dir: %w", err)
	}

	patterns := c.Input.AnnotationPatterns[:0]
	for _, pattern := range c.Input.AnnotationPatterns {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	if len(patterns) == 0 {
		patterns = append(patterns, defaultAnnotationPatterns...)
	}
	c.Input.AnnotationPatterns = patterns

	if c.Input.WorkedCallField == 0 {
		c.Input.WorkedCallField = defaultWorkedCallField
	}
	return nil
}

func (c *Config) normalizeMatching() {
	c.Matching.ModePolicy = strings.ToLower(strings.TrimSpace(c.Matching.ModePolicy))
	if c.Matching.ModePolicy == "" {
		c.Matching.ModePolicy = defaultModePolicy
	}
	if c.Matching.Workers < 0 {
		c.Matching.Workers = 0
	}
}

func (c *Config) normalizeOutputs() error {
	var err error
	if c.Output.Path, err = expandPath(strings.TrimSpace(c.Output.Path)); err != nil {
		return fmt.Errorf("output.path: %w", err)
	}
	if strings.TrimSpace(c.Audit.Path) == "" {
		c.Audit.Path = defaultAuditPath
	}
	if c.Audit.Path, err = expandPath(strings.TrimSpace(c.Audit.Path)); err != nil {
		return fmt.Errorf("audit.path: %w", err)
	}
	if c.Metrics.TextfilePath, err = expandPath(strings.TrimSpace(c.Metrics.TextfilePath)); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("QSOMERGE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
