package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/opencode-memento/internal/plugin"
	"github.com/mark3labs/mcp-go/mcp"
)

// RecentSessionsTool handles the memento_recent_sessions MCP tool.
type RecentSessionsTool struct {
	plugin *plugin.Plugin
}

// NewRecentSessionsTool creates a RecentSessionsTool.
func NewRecentSessionsTool(p *plugin.Plugin) *RecentSessionsTool {
	return &RecentSessionsTool{plugin: p}
}

// Definition returns the MCP tool definition for memento_recent_sessions.
func (t *RecentSessionsTool) Definition() mcp.Tool {
	return mcp.NewTool("memento_recent_sessions",
		mcp.WithDescription(
			"List the most recent prior sessions recorded for this project, newest first.",
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Number of sessions to return (default: 5, max: %d)", plugin.MaxRecentSessions)),
		),
	)
}

// Handle processes the memento_recent_sessions tool call.
func (t *RecentSessionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", 5)
	if limit <= 0 {
		return mcp.NewToolResultError("'limit' must be > 0"), nil
	}
	if limit > plugin.MaxRecentSessions {
		limit = plugin.MaxRecentSessions
	}

	recent := t.plugin.RecentSessions(ctx, limit)
	if len(recent) == 0 {
		return mcp.NewToolResultText(
			fmt.Sprintf("No prior sessions found for %s (backend: %s).", t.plugin.ProjectPath(), t.plugin.Backend()),
		), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Recent Sessions (%d)\n\n", len(recent))
	for _, s := range recent {
		summary := s.Summary
		if summary == "" {
			summary = "-"
		}
		fmt.Fprintf(&sb, "- **%s** | %s | %s\n", s.ID, s.Date, summary)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
