// Package resources implements MCP resource handlers for opencode-memento.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (memento://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/opencode-memento/internal/plugin"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatusURI addresses the activation status resource.
const StatusURI = "memento://status"

// Status is the JSON document served at StatusURI.
type Status struct {
	Active       bool   `json:"active"`
	SessionCount int    `json:"sessionCount"`
	MinSessions  int    `json:"minSessions"`
	Backend      string `json:"backend"`
	Location     string `json:"location"`
	Project      string `json:"project"`
}

// Handler manages memento resource endpoints.
type Handler struct {
	plugin *plugin.Plugin
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(p *plugin.Plugin) *Handler {
	return &Handler{plugin: p}
}

// StatusResource returns the MCP resource definition for activation status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		StatusURI,
		"Memento Status",
		mcp.WithResourceDescription("Whether session context injection is active for this project, and why"),
		mcp.WithMIMEType("application/json"),
	)
}

// Status reports the gate decision made at start.
func (h *Handler) Status() Status {
	gate := h.plugin.Gate()
	return Status{
		Active:       gate.Open(),
		SessionCount: gate.Count(),
		MinSessions:  gate.Threshold(),
		Backend:      h.plugin.Backend(),
		Location:     h.plugin.Location(),
		Project:      h.plugin.ProjectPath(),
	}
}

// HandleStatus returns the activation status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.Status(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
