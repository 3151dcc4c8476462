package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const (
	countSessionsQuery = `SELECT COUNT(*) FROM session WHERE directory = ?`

	recentSessionsQuery = `
		SELECT id, title, time_created
		FROM session
		WHERE directory = ?
		ORDER BY time_created DESC
		LIMIT ?`
)

// TableSource reads session rows from a SQLite database with a
// session(id, title, directory, time_created) table, time_created being
// epoch milliseconds. Rows match on exact directory equality.
//
// The database is opened read-only for each call and closed before the
// call returns. A missing file is never created.
type TableSource struct {
	path   string
	logger *zap.Logger
}

// NewTableSource creates a TableSource for the database file at path.
func NewTableSource(path string, logger *zap.Logger) *TableSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableSource{path: path, logger: logger.With(zap.String("source", "sqlite"))}
}

// Name implements Source.
func (s *TableSource) Name() string { return "sqlite" }

// EmptySummary implements Source.
func (s *TableSource) EmptySummary() string { return "No title" }

// Count implements Source.
func (s *TableSource) Count(ctx context.Context, projectPath string) int {
	n, err := s.count(ctx, projectPath)
	if err != nil {
		s.warn("count sessions", err)
		return 0
	}
	return n
}

// Recent implements Source.
func (s *TableSource) Recent(ctx context.Context, projectPath string, limit int) []Summary {
	if limit <= 0 {
		return []Summary{}
	}
	records, err := s.recent(ctx, projectPath, limit)
	if err != nil {
		s.warn("load recent sessions", err)
		return []Summary{}
	}
	return Rank(records, limit, RankOptions{})
}

func (s *TableSource) count(ctx context.Context, projectPath string) (int, error) {
	var n int
	err := s.withDB(ctx, func(db *sql.DB) error {
		if err := db.QueryRowContext(ctx, countSessionsQuery, projectPath).Scan(&n); err != nil {
			return fmt.Errorf("%w: count query: %v", ErrUnavailable, err)
		}
		return nil
	})
	return n, err
}

func (s *TableSource) recent(ctx context.Context, projectPath string, limit int) ([]Record, error) {
	var records []Record
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, recentSessionsQuery, projectPath, limit)
		if err != nil {
			return fmt.Errorf("%w: recent query: %v", ErrUnavailable, err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var (
				id      string
				title   sql.NullString
				created sql.NullInt64
			)
			if err := rows.Scan(&id, &title, &created); err != nil {
				s.logger.Warn("skipping session row", zap.Error(fmt.Errorf("%w: %v", ErrMalformed, err)))
				continue
			}
			r := Record{ID: id, Summary: title.String}
			if created.Valid {
				r.Time = created.Int64
			}
			records = append(records, r)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: iterate rows: %v", ErrUnavailable, err)
		}
		return nil
	})
	return records, err
}

// withDB opens the database read-only, runs fn and closes the handle on
// every path.
func (s *TableSource) withDB(ctx context.Context, fn func(db *sql.DB) error) error {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return fmt.Errorf("%w: stat %s: %v", ErrUnavailable, s.path, err)
	}

	db, err := openDB("sqlite", readOnlyDSN(s.path))
	if err != nil {
		return fmt.Errorf("%w: open database: %v", ErrUnavailable, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: open database: %v", ErrUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("%w: pragma busy_timeout: %v", ErrUnavailable, err)
	}

	return fn(db)
}

// readOnlyDSN builds a SQLite URI that opens path without write access.
func readOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro"}
	return u.String()
}

func (s *TableSource) warn(op string, err error) {
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("session database not found", zap.String("path", s.path))
		return
	}
	s.logger.Warn("session query failed", zap.String("op", op), zap.String("path", s.path), zap.Error(err))
}
