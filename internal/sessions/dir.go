package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DirSource reads session records from JSON files under a root directory.
//
// A file belongs to a project when its raw text contains the project path.
// This is a substring test, not a field comparison: "/work/app" also
// matches files of "/work/app-v2".
type DirSource struct {
	root   string
	logger *zap.Logger
}

// NewDirSource creates a DirSource rooted at root.
func NewDirSource(root string, logger *zap.Logger) *DirSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirSource{root: root, logger: logger.With(zap.String("source", "directory"))}
}

// Name implements Source.
func (s *DirSource) Name() string { return "directory" }

// EmptySummary implements Source.
func (s *DirSource) EmptySummary() string { return "No summary" }

// Count implements Source.
func (s *DirSource) Count(ctx context.Context, projectPath string) int {
	n := 0
	err := s.walk(ctx, projectPath, func(string, []byte) { n++ })
	if err != nil {
		s.warn("count sessions", err)
		return 0
	}
	return n
}

// Recent implements Source.
func (s *DirSource) Recent(ctx context.Context, projectPath string, limit int) []Summary {
	records, err := s.records(ctx, projectPath)
	if err != nil {
		s.warn("load recent sessions", err)
		return []Summary{}
	}
	return Rank(records, limit, RankOptions{DropInvalid: true})
}

// records decodes every matching file. Files that fail to decode are
// skipped with a warning; only a failure of the scan itself is returned.
func (s *DirSource) records(ctx context.Context, projectPath string) ([]Record, error) {
	var records []Record
	err := s.walk(ctx, projectPath, func(path string, content []byte) {
		r, err := decodeRecord(content)
		if err != nil {
			s.logger.Warn("skipping session file", zap.String("file", s.rel(path)), zap.Error(err))
			return
		}
		records = append(records, r)
	})
	return records, err
}

// walk calls match for every *.json file under the root whose content
// contains projectPath. Unreadable files and directories are skipped.
func (s *DirSource) walk(ctx context.Context, projectPath string, match func(path string, content []byte)) error {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, s.root)
		}
		return fmt.Errorf("%w: stat %s: %v", ErrUnavailable, s.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnavailable, s.root)
	}

	// WalkDir does not descend into a symlinked root.
	base, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrUnavailable, s.root, err)
	}

	needle := []byte(projectPath)
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, ctxErr)
		}
		isRoot := path == base
		if r, relErr := filepath.Rel(base, path); relErr == nil {
			path = filepath.Join(s.root, r)
		}
		if err != nil {
			if isRoot {
				return fmt.Errorf("%w: read %s: %v", ErrUnavailable, s.root, err)
			}
			s.logger.Warn("skipping unreadable path", zap.String("path", s.rel(path)), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to read session file", zap.String("file", s.rel(path)), zap.Error(err))
			return nil
		}
		if !bytes.Contains(content, needle) {
			return nil
		}
		match(path, content)
		return nil
	})
}

// decodeRecord parses one session file. The identifier comes from "id",
// the timestamp from the first present of createdAt, updatedAt and date,
// the summary from the first non-empty of summary, title and description.
func decodeRecord(content []byte) (Record, error) {
	var data map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if data == nil {
		return Record{}, fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}

	return Record{
		ID:      stringify(data["id"]),
		Time:    firstTruthy(data, "createdAt", "updatedAt", "date"),
		Summary: firstString(data, "summary", "title", "description"),
	}, nil
}

func (s *DirSource) rel(path string) string {
	if r, err := filepath.Rel(s.root, path); err == nil {
		return r
	}
	return path
}

func (s *DirSource) warn(op string, err error) {
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("sessions directory not found", zap.String("dir", s.root))
		return
	}
	s.logger.Warn("session scan failed", zap.String("op", op), zap.String("dir", s.root), zap.Error(err))
}
