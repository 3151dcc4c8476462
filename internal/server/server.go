// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it loads the plugin for one project and
// hands it to the tools and resources that expose it. No business logic
// lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/HendryAvila/opencode-memento/internal/memtools"
	"github.com/HendryAvila/opencode-memento/internal/plugin"
	"github.com/HendryAvila/opencode-memento/internal/prompts"
	"github.com/HendryAvila/opencode-memento/internal/resources"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the MCP server name announced to hosts.
const Name = "opencode-memento"

// New loads the plugin for projectDir and creates the MCP server with
// every tool and resource registered. The activation gate is evaluated
// here, once, before the server accepts requests.
func New(ctx context.Context, projectDir, home string, logger *zap.Logger) (*server.MCPServer, *plugin.Plugin, error) {
	if projectDir == "" {
		return nil, nil, fmt.Errorf("server: project directory is required")
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, nil, fmt.Errorf("server: resolving project directory: %w", err)
	}

	p := plugin.Load(ctx, abs, home, logger)

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	Register(s, p)
	return s, p, nil
}

// Register adds the memento tools, prompts and resources for p to s.
func Register(s *server.MCPServer, p *plugin.Plugin) {
	// --- Tools ---
	compaction := memtools.NewCompactionContextTool(p)
	s.AddTool(compaction.Definition(), compaction.Handle)

	recent := memtools.NewRecentSessionsTool(p)
	s.AddTool(recent.Definition(), recent.Handle)

	// --- Prompts ---
	recap := prompts.NewRecapPrompt(p)
	s.AddPrompt(recap.Definition(), recap.Handle)

	// --- Resources ---
	resourceHandler := resources.NewHandler(p)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)
}

// serverInstructions returns the system instructions that tell the AI
// how to use the memento tools.
func serverInstructions() string {
	return `You have access to opencode-memento, which carries context from prior coding sessions in this project across context compaction.

## When to call it

- Right before the conversation is compacted, call memento_compaction_context and keep the returned block in the compacted summary verbatim.
- When the user asks what was done in earlier sessions, call memento_recent_sessions. The memento-recap prompt does the same on request.

## Activation

Injection only activates for projects with enough prior sessions. Read memento://status to see whether it is active, how many sessions were found, and which session store was used. An inactive status is normal for new projects and is not an error.`
}
