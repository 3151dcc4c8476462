// Package prompts implements MCP prompt handlers for opencode-memento.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/HendryAvila/opencode-memento/internal/plugin"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultRecapLimit = 5

// RecapPrompt handles the memento-recap MCP prompt.
// It hands the AI the project's recent sessions and asks for a recap.
type RecapPrompt struct {
	plugin *plugin.Plugin
}

// NewRecapPrompt creates a RecapPrompt.
func NewRecapPrompt(p *plugin.Plugin) *RecapPrompt {
	return &RecapPrompt{plugin: p}
}

// Definition returns the MCP prompt definition for registration.
func (p *RecapPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("memento-recap",
		mcp.WithPromptDescription(
			"Recap what was done in prior sessions of this project "+
				"and suggest where to pick up.",
		),
		mcp.WithArgument("limit",
			mcp.ArgumentDescription(fmt.Sprintf("Number of sessions to include (default: %d, max: %d)", defaultRecapLimit, plugin.MaxRecentSessions)),
		),
	)
}

// Handle processes the memento-recap prompt request.
func (p *RecapPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	limit := defaultRecapLimit
	if raw := strings.TrimSpace(req.Params.Arguments["limit"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("prompts: invalid limit %q", raw)
		}
		limit = min(n, plugin.MaxRecentSessions)
	}

	recent := p.plugin.RecentSessions(ctx, limit)

	var sb strings.Builder
	if len(recent) == 0 {
		fmt.Fprintf(&sb, "There are no recorded prior sessions for %s.\n\n", p.plugin.ProjectPath())
		sb.WriteString("Tell me that this looks like a fresh project and ask what we are working on.")
	} else {
		fmt.Fprintf(&sb, "These are my most recent sessions in %s, newest first:\n\n", p.plugin.ProjectPath())
		for _, s := range recent {
			summary := s.Summary
			if summary == "" {
				summary = "(no summary)"
			}
			fmt.Fprintf(&sb, "- %s (%s): %s\n", s.ID, s.Date, summary)
		}
		sb.WriteString("\nPlease:\n" +
			"1. Summarize what these sessions worked on in a few bullets\n" +
			"2. Point out anything that looks unfinished\n" +
			"3. Suggest what I should do next")
	}

	return &mcp.GetPromptResult{
		Description: "Prior session recap",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(sb.String()),
			},
		},
	}, nil
}
