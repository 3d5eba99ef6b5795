// Package logging wraps zap for the engine's internal diagnostics: TT
// resize, option changes, rejected commands, and fatal errors. It never touches the UCI wire format — `info string` lines
// are protocol, not log records, and continue to go straight to stdout.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger writing to stderr at the given level
// ("debug", "info", "warn", "error"; unknown values fall back to info).
func New(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		// Building the logger itself should never fail with this config;
		// fall back to a no-op rather than crash the engine over logging.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// Fatal logs msg at fatal level and exits 1, matching §7's
// AllocationFailure/InternalInvariantViolated handling.
func Fatal(log *zap.SugaredLogger, msg string, keysAndValues ...interface{}) {
	log.Fatalw(msg, keysAndValues...)
}
