package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap/zaptest"
)

func TestNew_RegistersToolsAndResources(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	s, p, err := New(context.Background(), project, home, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil || p == nil {
		t.Fatal("New returned nil server or plugin")
	}
	if p.ProjectPath() != project {
		t.Errorf("ProjectPath = %q, want %q", p.ProjectPath(), project)
	}
	// No store under the fresh home: the gate stays closed.
	if p.Active() {
		t.Error("plugin should be inactive without prior sessions")
	}

	listed := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	for _, name := range []string{"memento_compaction_context", "memento_recent_sessions"} {
		if !strings.Contains(listed, `"`+name+`"`) {
			t.Errorf("tool %q not registered:\n%s", name, listed)
		}
	}

	promptsListed := call(t, s, `{"jsonrpc":"2.0","id":4,"method":"prompts/list"}`)
	if !strings.Contains(promptsListed, "memento-recap") {
		t.Errorf("recap prompt not registered:\n%s", promptsListed)
	}

	resourcesListed := call(t, s, `{"jsonrpc":"2.0","id":2,"method":"resources/list"}`)
	if !strings.Contains(resourcesListed, "memento://status") {
		t.Errorf("status resource not registered:\n%s", resourcesListed)
	}
}

func TestNew_ReadsProjectConfig(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	sessionsDir := filepath.Join(t.TempDir(), "sessions")
	if err := os.MkdirAll(sessionsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := `{"id":"s1","directory":` + quote(project) + `,"createdAt":"2024-05-01","summary":"Wired the server"}`
	if err := os.WriteFile(filepath.Join(sessionsDir, "s1.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgDir := filepath.Join(project, ".opencode")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := `{"minSessions": 1, "sessionsDir": ` + quote(sessionsDir) + `}`
	if err := os.WriteFile(filepath.Join(cfgDir, "session-context.json"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, p, err := New(context.Background(), project, home, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.Active() {
		t.Fatalf("plugin should be active, gate = %+v", p.Gate())
	}
	if got := p.Location(); got != sessionsDir {
		t.Errorf("Location = %q, want %q", got, sessionsDir)
	}
}

func TestNew_EmptyProject(t *testing.T) {
	if _, _, err := New(context.Background(), "", t.TempDir(), nil); err == nil {
		t.Error("expected error for empty project directory")
	}
}

func TestServerInstructions_NamesTools(t *testing.T) {
	text := serverInstructions()
	for _, want := range []string{"memento_compaction_context", "memento_recent_sessions", "memento://status"} {
		if !strings.Contains(text, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
}

func TestToolCall_ViaServer(t *testing.T) {
	s, _, err := New(context.Background(), t.TempDir(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out := call(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"memento_compaction_context","arguments":{}}}`)
	if !strings.Contains(out, "inactive") {
		t.Errorf("expected inactive notice, got:\n%s", out)
	}
	if strings.Contains(out, `"isError":true`) {
		t.Errorf("inactive plugin should not produce a tool error:\n%s", out)
	}
}

// call sends one JSON-RPC message to s and returns the encoded response.
func call(t *testing.T, s *server.MCPServer, msg string) string {
	t.Helper()
	resp := s.HandleMessage(context.Background(), json.RawMessage(msg))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(data)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
