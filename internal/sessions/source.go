package sessions

import (
	"context"

	"github.com/HendryAvila/opencode-memento/internal/config"
	"go.uber.org/zap"
)

// Source is a read-only store of prior session records.
//
// Count and Recent never fail: any problem reading the store is logged
// and reported as zero matches.
type Source interface {
	// Name identifies the backend in logs and status output.
	Name() string
	// Count returns how many records belong to projectPath.
	Count(ctx context.Context, projectPath string) int
	// Recent returns up to limit records for projectPath, newest first.
	Recent(ctx context.Context, projectPath string, limit int) []Summary
	// EmptySummary is the text shown for a record without a summary.
	EmptySummary() string
}

// NewSource selects the backend named in cfg. The choice is static for
// the lifetime of the returned Source.
func NewSource(cfg config.Config, logger *zap.Logger) Source {
	if cfg.Backend == config.BackendSQLite {
		return NewTableSource(cfg.DatabasePath, logger)
	}
	return NewDirSource(cfg.SessionsDir, logger)
}
