// Package cli implements the memento command line: the MCP stdio server,
// the compaction hook mode and a status report.
package cli

import (
	"fmt"
	"os"

	"github.com/HendryAvila/opencode-memento/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Test seams.
var (
	userHomeDir = os.UserHomeDir
	getwd       = os.Getwd
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	dir      string
	logLevel string
}

// NewRootCmd builds the memento command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "memento",
		Short: "Carry prior session context across OpenCode compactions",
		Long: `memento injects a short summary of prior coding sessions for the current
project into the context that survives conversation compaction.

It reads OpenCode's session store (a directory of JSON records or the
SQLite database) and only activates for projects with enough history.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "Project directory (default: hook payload cwd, then the working directory)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level written to stderr: debug, info, warn")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newCompactCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newVersionCmd(version))

	return root
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// logger builds the stderr logger for cmd.
func (o *options) logger(cmd *cobra.Command) *zap.Logger {
	return logging.New(o.logLevel, cmd.ErrOrStderr())
}

// home resolves the user's home directory once per invocation. A lookup
// failure leaves the defaults relative rather than failing the command.
func home(logger *zap.Logger) string {
	h, err := userHomeDir()
	if err != nil {
		logger.Warn("home directory unavailable", zap.Error(err))
		return ""
	}
	return h
}

// projectDir picks the project directory: the --dir flag, then fallback,
// then the process working directory.
func (o *options) projectDir(fallback string) (string, error) {
	if o.dir != "" {
		return o.dir, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	wd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("cli: working directory: %w", err)
	}
	return wd, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "memento v%s\n", version)
		},
	}
}
