// Package logging provides the leveled diagnostic logger shared by every
// package. Records go to stderr (stdout carries the batch-mode filename
// echo) and, optionally, as JSON to an append-only log file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/backmassage/dicomtonifti/internal/config"
	"github.com/backmassage/dicomtonifti/internal/term"
)

// Logger wraps a zap sugared logger with the printf-style methods used
// across the pipeline.
type Logger struct {
	sugar *zap.SugaredLogger
	base  *zap.Logger
	file  *os.File
	runID string
}

// NewLogger builds a Logger writing to stderr. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	return NewLoggerTo(cfg, os.Stderr)
}

// NewLoggerTo builds a Logger whose console records go to w.
//
// The console is quiet by default (warnings and errors only); --verbose
// lowers it to debug. The --log file always receives debug and above,
// tagged with the run identifier.
func NewLoggerTo(cfg *config.Config, w io.Writer) (*Logger, error) {
	l := &Logger{runID: uuid.NewString()}

	if f, ok := w.(*os.File); ok {
		term.Configure(cfg.ColorMode, f)
	} else {
		term.Configure(cfg.ColorMode, nil)
	}

	consoleLevel := zapcore.WarnLevel
	if cfg.Verbose {
		consoleLevel = zapcore.DebugLevel
	}
	consoleEnc := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
	if term.Enabled() {
		consoleEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.AddSync(w), consoleLevel),
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f

		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.TimeKey = "timestamp"
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), zapcore.DebugLevel).
			With([]zap.Field{zap.String("run_id", l.runID)})
		cores = append(cores, fileCore)
	}

	l.base = zap.New(zapcore.NewTee(cores...))
	l.sugar = l.base.Sugar()
	return l, nil
}

// Nop returns a Logger that discards everything. Used by tests.
func Nop() *Logger {
	base := zap.NewNop()
	return &Logger{base: base, sugar: base.Sugar(), runID: uuid.NewString()}
}

// RunID identifies this invocation in log records and the run manifest.
func (l *Logger) RunID() string { return l.runID }

// With returns a child logger that adds key/value pairs to every record.
// The child shares the parent's sinks; only the parent should be closed.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...), base: l.base, runID: l.runID}
}

// Close flushes buffered records and closes the log file if one was opened.
func (l *Logger) Close() error {
	_ = l.base.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Success logs a completed step at INFO level.
func (l *Logger) Success(format string, args ...interface{}) {
	l.sugar.With("status", "ok").Infof(format, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Debug logs at DEBUG level; shown on the console only with --verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}
