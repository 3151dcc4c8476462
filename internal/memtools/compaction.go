package memtools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/opencode-memento/internal/plugin"
	"github.com/mark3labs/mcp-go/mcp"
)

// CompactionContextTool handles the memento_compaction_context MCP tool.
// It runs the compaction hook and returns the block it would inject.
type CompactionContextTool struct {
	plugin *plugin.Plugin
}

// NewCompactionContextTool creates a CompactionContextTool.
func NewCompactionContextTool(p *plugin.Plugin) *CompactionContextTool {
	return &CompactionContextTool{plugin: p}
}

// Definition returns the MCP tool definition for memento_compaction_context.
func (t *CompactionContextTool) Definition() mcp.Tool {
	return mcp.NewTool("memento_compaction_context",
		mcp.WithDescription(
			"Get supplementary context to keep when the session is compacted: recent sessions "+
				"for this project, conventions from AGENTS.md, configured lint/format tools and "+
				"project notes. Call this right before summarizing the conversation.",
		),
		mcp.WithString("session_id",
			mcp.Description("ID of the session being compacted"),
		),
		mcp.WithString("trigger",
			mcp.Description("What started the compaction: manual or auto"),
		),
	)
}

// Handle processes the memento_compaction_context tool call.
func (t *CompactionContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !t.plugin.Active() {
		g := t.plugin.Gate()
		return mcp.NewToolResultText(fmt.Sprintf(
			"Session context injection is inactive for this project (%d of %d required prior sessions).",
			g.Count(), g.Threshold(),
		)), nil
	}

	out := &plugin.CompactingOutput{}
	t.plugin.OnCompacting(ctx, plugin.CompactingInput{
		SessionID: req.GetString("session_id", ""),
		Trigger:   req.GetString("trigger", ""),
	}, out)

	if len(out.Context) == 0 {
		return mcp.NewToolResultText("No session context to inject."), nil
	}
	return mcp.NewToolResultText(out.Context[0]), nil
}
