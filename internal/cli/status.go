package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/HendryAvila/opencode-memento/internal/plugin"
	"github.com/HendryAvila/opencode-memento/internal/resources"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether context injection is active for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			defer func() { _ = logger.Sync() }()

			dir, err := opts.projectDir("")
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("cli: resolving %s: %w", dir, err)
			}

			p := plugin.Load(cmd.Context(), abs, home(logger), logger)
			data, err := json.MarshalIndent(resources.NewHandler(p).Status(), "", "  ")
			if err != nil {
				return fmt.Errorf("cli: encoding status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
