package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"qsomerge/internal/cabrillo"
	"qsomerge/internal/correlate"
	"qsomerge/internal/stage"
)

//go:embed sample_config.toml
var sampleConfig string

// Input describes where annotations come from and how log lines are laid out.
type Input struct {
	AnnotationsDir     string   `toml:"annotations_dir"`
	AnnotationPatterns []string `toml:"annotation_patterns"`
	WorkedCallField    int      `toml:"worked_call_field"`
}

// Matching holds the correlation policy.
type Matching struct {
	ToleranceMinutes int    `toml:"tolerance_minutes"`
	ModePolicy       string `toml:"mode_policy"`
	// Workers bounds parallel correlation. Zero or one runs sequentially.
	Workers int `toml:"workers"`
}

// Output controls where the merged log is written.
type Output struct {
	// Path is the merged log destination. Empty derives it from the input
	// log; "-" writes to stdout.
	Path      string `toml:"path"`
	Overwrite bool   `toml:"overwrite"`
}

// Audit controls the per-run SQLite export.
type Audit struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Metrics controls the Prometheus textfile export.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for qsomerge.
type Config struct {
	Input    Input    `toml:"input"`
	Matching Matching `toml:"matching"`
	Output   Output   `toml:"output"`
	Audit    Audit    `toml:"audit"`
	Metrics  Metrics  `toml:"metrics"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, stage.Wrap(stage.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, stage.Wrap(stage.ErrConfiguration, "config", "normalize", "", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, stage.Wrap(stage.ErrConfiguration, "config", "validate", "", err)
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Policy returns the correlation policy described by the matching section.
func (c *Config) Policy() correlate.Policy {
	mode, err := correlate.ParseModePolicy(c.Matching.ModePolicy)
	if err != nil {
		mode = correlate.ModeSoft
	}
	return correlate.Policy{ToleranceMinutes: c.Matching.ToleranceMinutes, Mode: mode}
}

// CabrilloOptions returns the log reader settings.
func (c *Config) CabrilloOptions() cabrillo.Options {
	return cabrillo.Options{WorkedCallField: c.Input.WorkedCallField}
}

// OutputPath resolves the merged log destination for logPath.
func (c *Config) OutputPath(logPath string) string {
	if c.Output.Path != "" {
		return c.Output.Path
	}
	ext := filepath.Ext(logPath)
	return strings.TrimSuffix(logPath, ext) + ".merged" + ext
}

// AuditPath returns the audit database location when auditing is enabled.
func (c *Config) AuditPath() (string, bool) {
	if !c.Audit.Enabled || strings.TrimSpace(c.Audit.Path) == "" {
		return "", false
	}
	return c.Audit.Path, true
}

// ApplyOverrides re-runs normalization and validation after callers mutate
// the config, e.g. from command-line flags.
func (c *Config) ApplyOverrides() error {
	if err := c.normalize(); err != nil {
		return stage.Wrap(stage.ErrConfiguration, "config", "normalize", "", err)
	}
	if err := c.Validate(); err != nil {
		return stage.Wrap(stage.ErrConfiguration, "config", "validate", "", err)
	}
	return nil
}

// Encode renders the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" || pathValue == "-" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
