// Package config loads the per-project plugin configuration.
//
// The file lives at <project>/.opencode/session-context.json. Every key is
// optional; a missing or unreadable file yields the defaults. Defaults that
// depend on the user's home directory are resolved from the home argument
// passed to Load, never from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigDir is the project-relative directory holding the config file.
	ConfigDir = ".opencode"
	// ConfigFile is the config file name inside ConfigDir.
	ConfigFile = "session-context.json"
)

// Backend names accepted in the "backend" key.
const (
	BackendDirectory = "directory"
	BackendSQLite    = "sqlite"
)

// DefaultTitle is the heading line of every injected context block.
const DefaultTitle = "## Session Context (from opencode-memento)"

// Config is the immutable plugin configuration.
type Config struct {
	MinSessions     int      `mapstructure:"minSessions" json:"minSessions"`
	SearchLimit     int      `mapstructure:"searchLimit" json:"searchLimit"`
	IncludePatterns []string `mapstructure:"includePatterns" json:"includePatterns"`
	ExcludePatterns []string `mapstructure:"excludePatterns" json:"excludePatterns"`
	CustomContext   []string `mapstructure:"customContext" json:"customContext"`
	Backend         string   `mapstructure:"backend" json:"backend"`
	SessionsDir     string   `mapstructure:"sessionsDir" json:"sessionsDir"`
	DatabasePath    string   `mapstructure:"databasePath" json:"databasePath"`
	Title           string   `mapstructure:"title" json:"title"`
}

// Defaults returns the default configuration for a user whose home
// directory is home.
func Defaults(home string) Config {
	share := filepath.Join(home, ".local", "share", "opencode")
	return Config{
		MinSessions:     5,
		SearchLimit:     3,
		IncludePatterns: []string{},
		ExcludePatterns: []string{"node_modules", "dist", ".git"},
		CustomContext:   []string{},
		Backend:         BackendDirectory,
		SessionsDir:     filepath.Join(share, "sessions"),
		DatabasePath:    filepath.Join(share, "opencode.db"),
		Title:           DefaultTitle,
	}
}

// Path returns the config file location for a project root.
func Path(projectDir string) string {
	return filepath.Join(projectDir, ConfigDir, ConfigFile)
}

// Location returns the backend location the config points at: the
// sessions directory or the database file.
func (c Config) Location() string {
	if c.Backend == BackendSQLite {
		return c.DatabasePath
	}
	return c.SessionsDir
}

// Load reads the project config, merging it over Defaults(home).
//
// The returned Config is always usable. A non-nil error only reports why
// the defaults were used (missing file, invalid JSON, bad types) so the
// caller can log it; it never needs to abort.
func Load(projectDir, home string) (Config, error) {
	defaults := Defaults(home)
	path := Path(projectDir)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, fmt.Errorf("config: %s: %w", path, os.ErrNotExist)
		}
		return defaults, fmt.Errorf("config: stat %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("minSessions", defaults.MinSessions)
	v.SetDefault("searchLimit", defaults.SearchLimit)
	v.SetDefault("includePatterns", defaults.IncludePatterns)
	v.SetDefault("excludePatterns", defaults.ExcludePatterns)
	v.SetDefault("customContext", defaults.CustomContext)
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("sessionsDir", defaults.SessionsDir)
	v.SetDefault("databasePath", defaults.DatabasePath)
	v.SetDefault("title", defaults.Title)

	if err := v.ReadInConfig(); err != nil {
		return defaults, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return normalize(cfg, defaults, projectDir, home), nil
}

// normalize replaces out-of-range values with their defaults and resolves
// store paths: "~/" expands to home, relative paths are taken from the
// project root.
func normalize(cfg, defaults Config, projectDir, home string) Config {
	if cfg.MinSessions < 0 {
		cfg.MinSessions = defaults.MinSessions
	}
	if cfg.SearchLimit < 1 {
		cfg.SearchLimit = defaults.SearchLimit
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend != BackendDirectory && cfg.Backend != BackendSQLite {
		cfg.Backend = defaults.Backend
	}

	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = defaults.Title
	}

	cfg.SessionsDir = resolvePath(cfg.SessionsDir, defaults.SessionsDir, projectDir, home)
	cfg.DatabasePath = resolvePath(cfg.DatabasePath, defaults.DatabasePath, projectDir, home)

	if cfg.IncludePatterns == nil {
		cfg.IncludePatterns = []string{}
	}
	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = []string{}
	}
	if cfg.CustomContext == nil {
		cfg.CustomContext = []string{}
	}
	return cfg
}

func resolvePath(p, fallback, projectDir, home string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "":
		return fallback
	case p == "~":
		return home
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(home, p[2:])
	case filepath.IsAbs(p):
		return filepath.Clean(p)
	default:
		return filepath.Join(projectDir, p)
	}
}
