package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/opencode-memento/internal/plugin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// hookPayload is the JSON the host pipes to `memento compact`.
type hookPayload struct {
	SessionID string `json:"session_id"`
	Cwd       string `json:"cwd"`
	Trigger   string `json:"trigger"`
}

func newCompactCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Run the compaction hook once and print the context block",
		Long: `compact reads an optional JSON hook payload on stdin
({"session_id": "...", "cwd": "...", "trigger": "..."}), evaluates the
activation gate for the project and prints the context block to stdout.

Nothing is printed when the gate is closed or there is nothing to inject.
Store and config problems are logged to stderr and never fail the hook.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			defer func() { _ = logger.Sync() }()

			payload := readPayload(cmd.InOrStdin(), logger)

			dir, err := opts.projectDir(payload.Cwd)
			if err != nil {
				logger.Warn("no project directory, skipping", zap.Error(err))
				return nil
			}
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}

			p := plugin.Load(cmd.Context(), dir, home(logger), logger)

			var out plugin.CompactingOutput
			p.OnCompacting(cmd.Context(), plugin.CompactingInput{
				SessionID: payload.SessionID,
				Trigger:   payload.Trigger,
			}, &out)

			for _, block := range out.Context {
				fmt.Fprintln(cmd.OutOrStdout(), block)
			}
			return nil
		},
	}
}

// readPayload decodes the hook payload. Empty or malformed input yields
// the zero payload. A terminal on stdin is not read.
func readPayload(r io.Reader, logger *zap.Logger) hookPayload {
	var payload hookPayload
	if r == nil || interactive(r) {
		return payload
	}
	data, err := io.ReadAll(r)
	if err != nil {
		logger.Warn("reading hook payload", zap.Error(err))
		return payload
	}
	if strings.TrimSpace(string(data)) == "" {
		return payload
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Warn("malformed hook payload, ignoring", zap.Error(err))
		return hookPayload{}
	}
	return payload
}

// interactive reports whether r is a character device such as a terminal.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
