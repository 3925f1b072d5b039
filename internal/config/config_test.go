package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"qsomerge/internal/config"
	"qsomerge/internal/correlate"
	"qsomerge/internal/stage"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("QSOMERGE_ANNOTATIONS_DIR", "~/notes")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "qsomerge", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Input.AnnotationsDir != filepath.Join(tempHome, "notes") {
		t.Fatalf("unexpected annotations dir: %q", cfg.Input.AnnotationsDir)
	}
	if cfg.Audit.Path != filepath.Join(tempHome, ".local", "share", "qsomerge", "audit.db") {
		t.Fatalf("unexpected audit path: %q", cfg.Audit.Path)
	}
	if cfg.Input.WorkedCallField != 9 {
		t.Fatalf("unexpected worked call field %d", cfg.Input.WorkedCallField)
	}
	if got := cfg.Policy(); got != correlate.DefaultPolicy() {
		t.Fatalf("unexpected default policy %+v", got)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if _, ok := cfg.AuditPath(); ok {
		t.Fatal("expected auditing disabled by default")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "custom.toml")
	content := `
[input]
annotation_patterns = ["*.log", " "]
worked_call_field = 8

[matching]
tolerance_minutes = 2
mode_policy = "STRICT"
workers = 4

[output]
path = "~/merged.log"
overwrite = true

[audit]
enabled = true
path = "~/audit/run.db"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if strings.Join(cfg.Input.AnnotationPatterns, ",") != "*.log" {
		t.Fatalf("unexpected patterns %v", cfg.Input.AnnotationPatterns)
	}
	if cfg.CabrilloOptions().WorkedCallField != 8 {
		t.Fatalf("unexpected worked call field %d", cfg.Input.WorkedCallField)
	}
	policy := cfg.Policy()
	if policy.ToleranceMinutes != 2 || policy.Mode != correlate.ModeStrict {
		t.Fatalf("unexpected policy %+v", policy)
	}
	if cfg.Matching.Workers != 4 || !cfg.Output.Overwrite {
		t.Fatalf("unexpected matching/output %+v %+v", cfg.Matching, cfg.Output)
	}
	if cfg.OutputPath("/logs/es1xx.log") != filepath.Join(tempHome, "merged.log") {
		t.Fatalf("unexpected output path %q", cfg.OutputPath("/logs/es1xx.log"))
	}
	if auditPath, ok := cfg.AuditPath(); !ok || auditPath != filepath.Join(tempHome, "audit", "run.db") {
		t.Fatalf("unexpected audit path %q ok=%v", auditPath, ok)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadPrefersProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)
	if err := os.WriteFile("qsomerge.toml", []byte("[matching]\ntolerance_minutes = 3\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "qsomerge.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Matching.ToleranceMinutes != 3 {
		t.Fatalf("unexpected tolerance %d", cfg.Matching.ToleranceMinutes)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := map[string]string{
		"negative tolerance": "[matching]\ntolerance_minutes = -1\n",
		"bad mode policy":    "[matching]\nmode_policy = \"fuzzy\"\n",
		"bad call field":     "[input]\nworked_call_field = 3\n",
		"bad level":          "[logging]\nlevel = \"chatty\"\n",
		"unknown key":        "[matching]\ntolerance = 1\n",
		"malformed":          "[matching\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, stage.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if stage.ExitCode(err) != 2 {
				t.Fatalf("unexpected exit code %d", stage.ExitCode(err))
			}
		})
	}
}

func TestEnvLogLevelOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QSOMERGE_LOG_LEVEL", "WARN")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env level, got %q", cfg.Logging.Level)
	}
}

func TestOutputPathDerivedFromLog(t *testing.T) {
	cfg := config.Default()
	if got := cfg.OutputPath("/logs/es1xx.log"); got != "/logs/es1xx.merged.log" {
		t.Fatalf("OutputPath = %q", got)
	}
	if got := cfg.OutputPath("/logs/es1xx"); got != "/logs/es1xx.merged" {
		t.Fatalf("OutputPath without extension = %q", got)
	}
	cfg.Output.Path = "-"
	if got := cfg.OutputPath("/logs/es1xx.log"); got != "-" {
		t.Fatalf("OutputPath stdout = %q", got)
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.Matching.ModePolicy = " Ignore "
	if err := cfg.ApplyOverrides(); err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	if cfg.Policy().Mode != correlate.ModeIgnore {
		t.Fatalf("unexpected mode %q", cfg.Policy().Mode)
	}
	cfg.Matching.ToleranceMinutes = -5
	if err := cfg.ApplyOverrides(); !errors.Is(err, stage.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Matching.ModePolicy != "soft" || cfg.Input.WorkedCallField != 9 {
		t.Fatalf("unexpected sample values %+v", cfg)
	}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("Load(sample) = exists %v, err %v", exists, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), "mode_policy = 'soft'") {
		t.Fatalf("unexpected encoding:\n%s", data)
	}
}
