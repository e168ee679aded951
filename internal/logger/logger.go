// Package logger builds the zap loggers used by the server and the CLI.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/vocabsearch/internal/version"
)

// EnvCLI selects the logger of one-shot commands: console output on stderr,
// warnings and above, no caller or stacktraces.
const EnvCLI = "cli"

// NewLogger creates a zap logger for the given environment.
// prod uses JSON output, local/dev/docker use colored console output.
// levelOverride (if non-empty) overrides the log level: debug, info, warn, error.
func NewLogger(env string, levelOverride ...string) (*zap.Logger, error) {
	var cfg zap.Config
	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
		cfg.InitialFields = map[string]any{
			"service": "vocabsearch",
			"version": version.Version,
		}
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case EnvCLI:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.OutputPaths = []string{"stderr"}
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		opts = nil
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if len(levelOverride) > 0 && levelOverride[0] != "" {
		level, err := ParseLevel(levelOverride[0])
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
