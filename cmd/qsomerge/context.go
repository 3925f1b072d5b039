package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"qsomerge/internal/config"
	"qsomerge/internal/logging"
	"qsomerge/internal/stage"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyLogFlags(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// applyOverrides revalidates cfg after command flags changed it. Logging
// flags win over both the file and the environment.
func (c *commandContext) applyOverrides(cfg *config.Config) error {
	if err := cfg.ApplyOverrides(); err != nil {
		return err
	}
	return c.applyLogFlags(cfg)
}

func (c *commandContext) applyLogFlags(cfg *config.Config) error {
	changed := false
	if value := flagValue(c.logLevelFlag); value != "" {
		cfg.Logging.Level = value
		changed = true
	}
	if value := flagValue(c.logFormatFlag); value != "" {
		cfg.Logging.Format = value
		changed = true
	}
	if !changed {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return stage.Wrap(stage.ErrConfiguration, "config", "flags", "", err)
	}
	switch cfg.Logging.Format {
	case "console", "json":
		return nil
	default:
		return stage.Wrap(stage.ErrConfiguration, "config", "flags",
			"--log-format must be console or json", nil)
	}
}

func (c *commandContext) logger(stderr io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, stderr)
}

func flagValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*value))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
