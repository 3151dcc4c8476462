// memento: prior-session context for OpenCode compactions.
//
// Usage:
//
//	memento serve     # Start MCP server (stdio transport)
//	memento compact   # Run the compaction hook once (payload on stdin)
//	memento status    # Show activation status for the project
//	memento version   # Print the version
package main

import (
	"os"

	"github.com/HendryAvila/opencode-memento/internal/cli"
	"github.com/HendryAvila/opencode-memento/internal/server"
)

func main() {
	if err := cli.Execute(server.Version); err != nil {
		os.Exit(1)
	}
}
