// Package log provides leveled logging for the CLI and store, backed by
// kataras/golog.
package log

import "github.com/kataras/golog"

// Logger is the minimal logging surface the rest of the code depends on.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// gologLogger adapts a *golog.Logger to Logger.
type gologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*gologLogger)(nil)

func (l *gologLogger) Debug(format string, v ...any) { l.logger.Debugf(format, v...) }
func (l *gologLogger) Info(format string, v ...any)  { l.logger.Infof(format, v...) }
func (l *gologLogger) Warn(format string, v ...any)  { l.logger.Warnf(format, v...) }
func (l *gologLogger) Error(format string, v ...any) { l.logger.Errorf(format, v...) }

var defaultLogger Logger = newDefault("warn")

func newDefault(level string) *gologLogger {
	g := golog.New()
	g.SetLevel(level)
	return &gologLogger{logger: g}
}

// SetVerbose switches the default logger between debug and the quiet
// default. The CLI wires this to --verbose.
func SetVerbose(verbose bool) {
	if verbose {
		defaultLogger = newDefault("debug")
	} else {
		defaultLogger = newDefault("warn")
	}
}

// SetDefault replaces the package-level logger.
func SetDefault(l Logger) {
	defaultLogger = l
}

// Debug logs through the package-level logger.
func Debug(format string, v ...any) { defaultLogger.Debug(format, v...) }

// Info logs through the package-level logger.
func Info(format string, v ...any) { defaultLogger.Info(format, v...) }

// Warn logs through the package-level logger.
func Warn(format string, v ...any) { defaultLogger.Warn(format, v...) }

// Error logs through the package-level logger.
func Error(format string, v ...any) { defaultLogger.Error(format, v...) }
