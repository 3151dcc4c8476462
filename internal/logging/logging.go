// Package logging builds the structured logger used across opencode-memento
// and the leveled Sink the plugin reports to.
//
// Everything is written to stderr: stdout belongs to the MCP stdio
// transport and to the compact hook output.
package logging

import (
	"context"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is the name attached to every message emitted through a Sink.
const Service = "opencode-memento"

// Level is the severity accepted by a Sink.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
)

// New returns a JSON zap logger writing to w at the given level.
// Unknown level names fall back to info.
func New(level string, w io.Writer) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(lvl),
	)
	return zap.New(core)
}

// Sink accepts leveled messages with a free-form extra payload.
// Implementations must not block the caller on delivery failures.
type Sink interface {
	Log(ctx context.Context, level Level, message string, extra map[string]any)
}

// ZapSink forwards Sink messages to a zap logger.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink wraps logger. A nil logger yields a no-op sink.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger.With(zap.String("service", Service))}
}

// Log implements Sink.
func (s *ZapSink) Log(_ context.Context, level Level, message string, extra map[string]any) {
	fields := extraFields(extra)
	switch level {
	case LevelDebug:
		s.logger.Debug(message, fields...)
	case LevelWarn:
		s.logger.Warn(message, fields...)
	default:
		s.logger.Info(message, fields...)
	}
}

// extraFields converts extra into zap fields in key order so output is stable.
func extraFields(extra map[string]any) []zap.Field {
	if len(extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, extra[k]))
	}
	return fields
}

// NopSink discards everything.
type NopSink struct{}

// Log implements Sink.
func (NopSink) Log(context.Context, Level, string, map[string]any) {}
