package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/opencode-memento/internal/config"
	"github.com/HendryAvila/opencode-memento/internal/logging"
	"github.com/HendryAvila/opencode-memento/internal/sessions"
)

// ─── Test doubles ────────────────────────────────────────────────────────────

type fakeSource struct {
	count       int
	recent      []sessions.Summary
	countCalls  int
	recentCalls int
}

func (f *fakeSource) Name() string         { return "fake" }
func (f *fakeSource) EmptySummary() string { return "No summary" }

func (f *fakeSource) Count(context.Context, string) int {
	f.countCalls++
	return f.count
}

func (f *fakeSource) Recent(_ context.Context, _ string, limit int) []sessions.Summary {
	f.recentCalls++
	if len(f.recent) > limit {
		return f.recent[:limit]
	}
	return f.recent
}

type logEntry struct {
	level   logging.Level
	message string
	extra   map[string]any
}

type recordingSink struct{ entries []logEntry }

func (r *recordingSink) Log(_ context.Context, level logging.Level, message string, extra map[string]any) {
	r.entries = append(r.entries, logEntry{level, message, extra})
}

func (r *recordingSink) find(level logging.Level) []logEntry {
	var out []logEntry
	for _, e := range r.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

func noPatterns(string) []string { return nil }

func testConfig() config.Config {
	cfg := config.Defaults("/home/test")
	cfg.MinSessions = 2
	cfg.SearchLimit = 3
	return cfg
}

// ─── Gate ────────────────────────────────────────────────────────────────────

func TestGate(t *testing.T) {
	tests := []struct {
		count, threshold int
		want             bool
	}{
		{0, 0, true},
		{4, 5, false},
		{5, 5, true},
		{9, 5, true},
	}
	for _, tt := range tests {
		g := NewGate(tt.count, tt.threshold)
		if g.Open() != tt.want {
			t.Errorf("NewGate(%d, %d).Open() = %v, want %v", tt.count, tt.threshold, g.Open(), tt.want)
		}
		if g.Count() != tt.count || g.Threshold() != tt.threshold {
			t.Errorf("gate accessors = (%d, %d)", g.Count(), g.Threshold())
		}
	}
}

// ─── New ─────────────────────────────────────────────────────────────────────

func TestNew_LogsExperimentalWarningAndActivation(t *testing.T) {
	sink := &recordingSink{}
	src := &fakeSource{count: 4}

	p := New(context.Background(), Options{
		Config: testConfig(), ProjectPath: "/proj", Source: src, Sink: sink, Discover: noPatterns,
	})

	if !p.Active() {
		t.Fatal("expected plugin to be active")
	}
	if src.countCalls != 1 {
		t.Errorf("Count called %d times, want 1", src.countCalls)
	}

	warns := sink.find(logging.LevelWarn)
	if len(warns) != 1 || warns[0].extra["hook"] != HookName {
		t.Errorf("warn entries = %+v", warns)
	}
	infos := sink.find(logging.LevelInfo)
	if len(infos) != 1 || !strings.Contains(infos[0].message, "(4 prior sessions)") {
		t.Errorf("info entries = %+v", infos)
	}
}

func TestNew_InactiveSkipsInfoLog(t *testing.T) {
	sink := &recordingSink{}
	p := New(context.Background(), Options{
		Config: testConfig(), ProjectPath: "/proj", Source: &fakeSource{count: 1}, Sink: sink, Discover: noPatterns,
	})

	if p.Active() {
		t.Fatal("expected plugin to be inactive")
	}
	if n := len(sink.find(logging.LevelInfo)); n != 0 {
		t.Errorf("info entries = %d, want 0", n)
	}
}

// ─── OnCompacting ────────────────────────────────────────────────────────────

func TestOnCompacting_InjectsBlock(t *testing.T) {
	cfg := testConfig()
	cfg.CustomContext = []string{"Run make check before pushing"}
	sink := &recordingSink{}
	src := &fakeSource{
		count: 3,
		recent: []sessions.Summary{
			{ID: "s3", Date: "2024-03-01", Summary: "Wired the cache"},
			{ID: "s2", Date: "2024-02-01"},
		},
	}

	p := New(context.Background(), Options{
		Config: cfg, ProjectPath: "/proj", Source: src, Sink: sink,
		Discover: func(string) []string { return []string{"Keep handlers thin"} },
	})

	out := &CompactingOutput{Context: []string{"existing"}}
	p.OnCompacting(context.Background(), CompactingInput{SessionID: "now"}, out)

	if len(out.Context) != 2 {
		t.Fatalf("context entries = %d, want 2", len(out.Context))
	}
	if out.Context[0] != "existing" {
		t.Error("existing context was modified")
	}

	block := out.Context[1]
	for _, want := range []string{
		config.DefaultTitle,
		"- s3 (2024-03-01): Wired the cache",
		"- s2 (2024-02-01): No summary",
		"- Keep handlers thin",
		"- Run make check before pushing",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q:\n%s", want, block)
		}
	}

	debug := sink.find(logging.LevelDebug)
	if len(debug) != 1 {
		t.Fatalf("debug entries = %d, want 1", len(debug))
	}
	if debug[0].extra["sectionsCount"] != 3 || debug[0].extra["sessionCount"] != 3 {
		t.Errorf("debug extra = %+v", debug[0].extra)
	}
}

func TestOnCompacting_NothingToInject(t *testing.T) {
	sink := &recordingSink{}
	p := New(context.Background(), Options{
		Config: testConfig(), ProjectPath: "/proj", Source: &fakeSource{count: 5}, Sink: sink, Discover: noPatterns,
	})

	out := &CompactingOutput{}
	p.OnCompacting(context.Background(), CompactingInput{}, out)

	if len(out.Context) != 0 {
		t.Errorf("context = %q, want nothing appended", out.Context)
	}
	if n := len(sink.find(logging.LevelDebug)); n != 0 {
		t.Errorf("debug entries = %d, want 0", n)
	}
}

func TestOnCompacting_InactiveNeverQueries(t *testing.T) {
	src := &fakeSource{count: 0, recent: []sessions.Summary{{ID: "x", Date: "d"}}}
	cfg := testConfig()
	cfg.CustomContext = []string{"would otherwise be injected"}

	p := New(context.Background(), Options{Config: cfg, ProjectPath: "/proj", Source: src, Discover: noPatterns})

	out := &CompactingOutput{}
	for i := 0; i < 3; i++ {
		p.OnCompacting(context.Background(), CompactingInput{}, out)
	}
	if len(out.Context) != 0 {
		t.Errorf("inactive plugin injected %d blocks", len(out.Context))
	}
	if src.recentCalls != 0 {
		t.Errorf("Recent called %d times on inactive plugin", src.recentCalls)
	}
}

func TestOnCompacting_NilOutput(t *testing.T) {
	p := New(context.Background(), Options{
		Config: testConfig(), ProjectPath: "/proj", Source: &fakeSource{count: 9}, Discover: noPatterns,
	})
	p.OnCompacting(context.Background(), CompactingInput{}, nil)
}

// TestGate_OneShotWithDirectorySource covers a count of exactly
// minSessions-1 at start: later sessions never activate injection.
func TestGate_OneShotWithDirectorySource(t *testing.T) {
	root := t.TempDir()
	project := "/work/one-shot"
	write := func(i int) {
		name := filepath.Join(root, fmt.Sprintf("s%d.json", i))
		body := fmt.Sprintf(`{"id":"s%d","directory":%q,"createdAt":"2024-01-0%d"}`, i, project, i)
		if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := testConfig()
	cfg.MinSessions = 3
	for i := 1; i < cfg.MinSessions; i++ {
		write(i)
	}

	src := sessions.NewDirSource(root, nil)
	p := New(context.Background(), Options{Config: cfg, ProjectPath: project, Source: src, Discover: noPatterns})
	if p.Active() {
		t.Fatal("gate opened below threshold")
	}

	for i := cfg.MinSessions; i < cfg.MinSessions+3; i++ {
		write(i)
	}
	if n := src.Count(context.Background(), project); n < cfg.MinSessions {
		t.Fatalf("fixture count = %d, expected threshold reached", n)
	}

	out := &CompactingOutput{}
	for i := 0; i < 3; i++ {
		p.OnCompacting(context.Background(), CompactingInput{}, out)
	}
	if len(out.Context) != 0 {
		t.Errorf("closed gate injected %d blocks", len(out.Context))
	}
}
