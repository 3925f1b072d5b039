package testsupport

import (
	"path/filepath"
	"testing"

	"qsomerge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a default config whose file outputs live in a per-test
// temp directory. Audit and metrics stay disabled unless an option enables them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Audit.Path = filepath.Join(base, "audit.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithAudit enables the audit database under the config's temp directory.
func WithAudit() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audit.Enabled = true
	}
}

// WithMetrics enables the textfile metrics export under the temp directory.
func WithMetrics() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.TextfilePath = filepath.Join(b.baseDir, "qsomerge.prom")
	}
}

// WithOutput sets the merged log destination.
func WithOutput(path string, overwrite bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Path = path
		b.cfg.Output.Overwrite = overwrite
	}
}

// WithWorkers sets the correlation worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.Workers = n
	}
}

// IsolateEnv points HOME at a temp directory and clears the variables the
// config loader consults, so host settings cannot leak into a test.
func IsolateEnv(t *testing.T) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)
	t.Setenv("QSOMERGE_ANNOTATIONS_DIR", "")
	t.Setenv("QSOMERGE_LOG_LEVEL", "")
	return home
}
