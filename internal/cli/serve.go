package cli

import (
	"fmt"

	memserver "github.com/HendryAvila/opencode-memento/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveStdio is replaced in tests.
var serveStdio = func(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			defer func() { _ = logger.Sync() }()

			dir, err := opts.projectDir("")
			if err != nil {
				return err
			}

			s, p, err := memserver.New(cmd.Context(), dir, home(logger), logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			logger.Info("serving on stdio",
				zap.String("project", p.ProjectPath()),
				zap.String("backend", p.Backend()),
				zap.Bool("active", p.Active()),
			)
			return serveStdio(s)
		},
	}
}
