// Package plugin implements the compaction hook: a one-shot activation
// gate evaluated at start, then on every compaction event the ranked
// session history, discovered patterns and configured notes are
// assembled into a single context block.
package plugin

import (
	"context"
	"fmt"

	"github.com/HendryAvila/opencode-memento/internal/config"
	"github.com/HendryAvila/opencode-memento/internal/contextblock"
	"github.com/HendryAvila/opencode-memento/internal/logging"
	"github.com/HendryAvila/opencode-memento/internal/patterns"
	"github.com/HendryAvila/opencode-memento/internal/sessions"
)

// HookName is the host hook this plugin serves.
const HookName = "experimental.session.compacting"

// MaxRecentSessions caps how many sessions a caller may request from
// RecentSessions through the MCP surface.
const MaxRecentSessions = 50

// CompactingInput describes the compaction event.
type CompactingInput struct {
	SessionID string `json:"session_id,omitempty"`
	Trigger   string `json:"trigger,omitempty"`
}

// CompactingOutput collects context blocks appended by hooks.
type CompactingOutput struct {
	Context []string `json:"context"`
}

// Options configures a Plugin.
type Options struct {
	Config      config.Config
	ProjectPath string
	Source      sessions.Source
	// Sink receives host-facing log messages. Nil discards them.
	Sink logging.Sink
	// Discover finds project patterns. Nil uses patterns.Discover.
	Discover func(projectPath string) []string
}

// Plugin is the compaction hook. All state is fixed in New, so a Plugin
// may be shared between goroutines.
type Plugin struct {
	cfg         config.Config
	projectPath string
	source      sessions.Source
	sink        logging.Sink
	discover    func(string) []string
	gate        Gate
}

// New counts the project's prior sessions and fixes the activation gate
// for the plugin's lifetime.
func New(ctx context.Context, opts Options) *Plugin {
	p := &Plugin{
		cfg:         opts.Config,
		projectPath: opts.ProjectPath,
		source:      opts.Source,
		sink:        opts.Sink,
		discover:    opts.Discover,
	}
	if p.sink == nil {
		p.sink = logging.NopSink{}
	}
	if p.discover == nil {
		p.discover = patterns.Discover
	}

	p.sink.Log(ctx, logging.LevelWarn,
		"Using experimental session.compacting hook - behavior may change",
		map[string]any{"hook": HookName},
	)

	p.gate = NewGate(p.source.Count(ctx, p.projectPath), p.cfg.MinSessions)

	if p.gate.Open() {
		p.sink.Log(ctx, logging.LevelInfo,
			fmt.Sprintf("Session context injection active (%d prior sessions)", p.gate.Count()),
			map[string]any{"backend": p.source.Name(), "location": p.cfg.Location()},
		)
	}
	return p
}

// Active reports whether the gate opened at start.
func (p *Plugin) Active() bool { return p.gate.Open() }

// Gate returns the activation gate fixed at start.
func (p *Plugin) Gate() Gate { return p.gate }

// ProjectPath returns the project the plugin serves.
func (p *Plugin) ProjectPath() string { return p.projectPath }

// Backend returns the name of the record source.
func (p *Plugin) Backend() string { return p.source.Name() }

// Location returns the configured store path of the selected backend.
func (p *Plugin) Location() string { return p.cfg.Location() }

// RecentSessions returns up to limit ranked sessions for the project,
// regardless of the gate.
func (p *Plugin) RecentSessions(ctx context.Context, limit int) []sessions.Summary {
	return p.source.Recent(ctx, p.projectPath, limit)
}

// Build assembles the context block for the current state of the
// project. It returns false when the gate is closed or nothing is worth
// injecting.
func (p *Plugin) Build(ctx context.Context) (contextblock.Block, bool) {
	if !p.gate.Open() {
		return contextblock.Block{}, false
	}

	return contextblock.Assemble(contextblock.Input{
		Title:        p.cfg.Title,
		Sessions:     p.source.Recent(ctx, p.projectPath, p.cfg.SearchLimit),
		EmptySummary: p.source.EmptySummary(),
		Patterns:     p.discover(p.projectPath),
		Notes:        p.cfg.CustomContext,
	})
}

// OnCompacting appends at most one context block to output.
func (p *Plugin) OnCompacting(ctx context.Context, input CompactingInput, output *CompactingOutput) {
	if output == nil {
		return
	}
	block, ok := p.Build(ctx)
	if !ok {
		return
	}

	output.Context = append(output.Context, block.Text)

	p.sink.Log(ctx, logging.LevelDebug, "Injected session context into compaction", map[string]any{
		"sessionCount":  p.gate.Count(),
		"sectionsCount": block.Sections,
		"lines":         block.Lines,
		"backend":       p.source.Name(),
		"sessionID":     input.SessionID,
	})
}
