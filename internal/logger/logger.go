package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging interface used across the harvester.
// Every entry carries a short machine-readable event name next to the
// human-readable message.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type zapLogger struct {
	log *zap.Logger
}

// New builds a production zap logger at the given level ("debug", "info",
// "warn", "error"; anything else falls back to info).
func New(level string) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{log: log}, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) DebugObj(msg, event string, fields map[string]any) {
	l.log.Debug(msg, toZapFields(event, fields)...)
}

func (l *zapLogger) InfoObj(msg, event string, fields map[string]any) {
	l.log.Info(msg, toZapFields(event, fields)...)
}

func (l *zapLogger) WarnObj(msg, event string, fields map[string]any) {
	l.log.Warn(msg, toZapFields(event, fields)...)
}

func (l *zapLogger) ErrorObj(msg, event string, fields map[string]any) {
	l.log.Error(msg, toZapFields(event, fields)...)
}

func toZapFields(event string, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	out = append(out, zap.String("event", event))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// NopLogger discards all log entries. Used as the default when callers pass
// a nil logger and in tests.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
