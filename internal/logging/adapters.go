package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// WailsLogger routes Wails runtime logs into zap.
type WailsLogger struct {
	log *zap.Logger
}

// Wails returns an adapter satisfying the Wails logger interface.
func (l *Logger) Wails() *WailsLogger {
	return &WailsLogger{log: l.Logger.Named("wails").WithOptions(zap.AddCallerSkip(1))}
}

func (w *WailsLogger) Print(message string)   { w.log.Info(message) }
func (w *WailsLogger) Trace(message string)   { w.log.Debug(message) }
func (w *WailsLogger) Debug(message string)   { w.log.Debug(message) }
func (w *WailsLogger) Info(message string)    { w.log.Info(message) }
func (w *WailsLogger) Warning(message string) { w.log.Warn(message) }
func (w *WailsLogger) Error(message string)   { w.log.Error(message) }

// Fatal is logged at error level; the bootstrap sequencer owns process exit.
func (w *WailsLogger) Fatal(message string) { w.log.Error(message, zap.Bool("fatal", true)) }

var _ wailslogger.Logger = (*WailsLogger)(nil)

// WailsLevel maps the logger's enabled level onto the Wails level scale.
func (l *Logger) WailsLevel() wailslogger.LogLevel {
	core := l.Logger.Core()
	switch {
	case core.Enabled(zapcore.DebugLevel):
		return wailslogger.DEBUG
	case core.Enabled(zapcore.InfoLevel):
		return wailslogger.INFO
	case core.Enabled(zapcore.WarnLevel):
		return wailslogger.WARNING
	default:
		return wailslogger.ERROR
	}
}

// RetryableLogger satisfies retryablehttp.LeveledLogger.
type RetryableLogger struct {
	sugar *zap.SugaredLogger
}

// Retryable returns an adapter for go-retryablehttp clients.
func (l *Logger) Retryable() *RetryableLogger {
	return &RetryableLogger{sugar: l.Logger.Named("http").Sugar()}
}

func (r *RetryableLogger) Error(msg string, keysAndValues ...interface{}) {
	r.sugar.Errorw(msg, keysAndValues...)
}

func (r *RetryableLogger) Info(msg string, keysAndValues ...interface{}) {
	r.sugar.Infow(msg, keysAndValues...)
}

func (r *RetryableLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.sugar.Debugw(msg, keysAndValues...)
}

func (r *RetryableLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.sugar.Warnw(msg, keysAndValues...)
}
