// Package logging builds the zap loggers used across resmon.
//
// Diagnostic output goes to stderr so that command output on stdout
// stays machine-readable. Without --verbose only warnings and errors
// are emitted; the collect command is silent on a fully successful run.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr. Verbose enables
// debug-level output (per-target progress, timings); otherwise only
// warnings and errors are shown.
func New(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		level,
	)

	return zap.New(core)
}

// Flush forces any buffered log entries to be written. Sync can fail
// harmlessly when stderr is a terminal, so the error is ignored.
func Flush(l *zap.Logger) {
	_ = l.Sync()
}
