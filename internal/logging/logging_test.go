package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_WritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("k", "v"))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "shown" {
		t.Errorf("msg = %v, want shown", entry["msg"])
	}
	if entry["k"] != "v" {
		t.Errorf("k = %v, want v", entry["k"])
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New("chatty", &buf)

	logger.Debug("dropped")
	logger.Info("kept")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("info message missing")
	}
}

func TestZapSink_MapsLevelsAndExtra(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	ctx := context.Background()
	sink.Log(ctx, LevelDebug, "d", nil)
	sink.Log(ctx, LevelInfo, "i", map[string]any{"count": 3})
	sink.Log(ctx, LevelWarn, "w", map[string]any{"hook": "compacting"})

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, wantLevels[i])
		}
		if e.ContextMap()["service"] != Service {
			t.Errorf("entry %d missing service field", i)
		}
	}

	if got := entries[1].ContextMap()["count"]; got != int64(3) {
		t.Errorf("count field = %v (%T), want 3", got, got)
	}
	if got := entries[2].ContextMap()["hook"]; got != "compacting" {
		t.Errorf("hook field = %v, want compacting", got)
	}
}

func TestNewZapSink_NilLogger(t *testing.T) {
	sink := NewZapSink(nil)
	sink.Log(context.Background(), LevelWarn, "nobody listens", map[string]any{"x": 1})
}
