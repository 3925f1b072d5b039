package config

const (
	defaultWorkedCallField  = 9
	defaultToleranceMinutes = 0
	defaultModePolicy       = "soft"
	defaultAuditPath        = "~/.local/share/qsomerge/audit.db"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultConfigPath       = "~/.config/qsomerge/config.toml"
	projectConfigName       = "qsomerge.toml"
)

var defaultAnnotationPatterns = []string{"*.txt", "*.notes"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Input: Input{
			AnnotationPatterns: append([]string(nil), defaultAnnotationPatterns...),
			WorkedCallField:    defaultWorkedCallField,
		},
		Matching: Matching{
			ToleranceMinutes: defaultToleranceMinutes,
			ModePolicy:       defaultModePolicy,
		},
		Audit: Audit{
			Path: defaultAuditPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
