package plugin

import (
	"context"
	"errors"
	"os"

	"github.com/HendryAvila/opencode-memento/internal/config"
	"github.com/HendryAvila/opencode-memento/internal/logging"
	"github.com/HendryAvila/opencode-memento/internal/sessions"
	"go.uber.org/zap"
)

// Load reads the project config, selects the record source and starts a
// Plugin for projectDir. home resolves the default store locations.
// A missing or broken config file is not an error: defaults apply.
func Load(ctx context.Context, projectDir, home string, logger *zap.Logger) *Plugin {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := config.Load(projectDir, home)
	switch {
	case err == nil:
		logger.Debug("loaded config", zap.String("path", config.Path(projectDir)))
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("no config file, using defaults", zap.String("path", config.Path(projectDir)))
	default:
		logger.Debug("invalid config file, using defaults", zap.Error(err))
	}

	return New(ctx, Options{
		Config:      cfg,
		ProjectPath: projectDir,
		Source:      sessions.NewSource(cfg, logger),
		Sink:        logging.NewZapSink(logger),
	})
}
