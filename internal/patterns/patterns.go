// Package patterns discovers project conventions worth repeating after a
// compaction: bullet points from AGENTS.md and which lint or format tools
// are configured. Discovery is best-effort; anything unreadable is
// skipped.
package patterns

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// AgentsFile is the project-relative conventions document.
const AgentsFile = "AGENTS.md"

// maxConventions caps the bullets taken from the Conventions section.
const maxConventions = 5

// AntiPatternsHint is emitted when AGENTS.md has an Anti-Patterns section.
const AntiPatternsHint = "See AGENTS.md for anti-patterns to avoid"

var (
	conventionsHeader  = regexp.MustCompile(`(?m)^## Conventions\n`)
	antiPatternsHeader = regexp.MustCompile(`## Anti-Patterns[^\n]*\n`)
	nextSection        = regexp.MustCompile(`\n##`)
)

// probe maps a set of config file names to the hint emitted when any of
// them exists in the project root.
type probe struct {
	files []string
	hint  string
}

var probes = []probe{
	{
		files: []string{".eslintrc.json", ".eslintrc.js", "eslint.config.js", "eslint.config.mjs"},
		hint:  "ESLint configured - follow linting rules",
	},
	{
		files: []string{".prettierrc", ".prettierrc.json"},
		hint:  "Prettier configured - use for formatting",
	},
	{
		files: []string{".golangci.yml", ".golangci.yaml"},
		hint:  "golangci-lint configured - run it before committing",
	},
}

// Discover returns the patterns found under projectPath, conventions
// first, then tool hints.
func Discover(projectPath string) []string {
	var found []string

	if content, err := os.ReadFile(filepath.Join(projectPath, AgentsFile)); err == nil {
		found = append(found, Conventions(string(content))...)
		if HasAntiPatterns(string(content)) {
			found = append(found, AntiPatternsHint)
		}
	}

	for _, p := range probes {
		if anyExists(projectPath, p.files) {
			found = append(found, p.hint)
		}
	}
	return found
}

// Conventions extracts up to five bullet lines from the "## Conventions"
// section of an AGENTS.md document. The section ends at the next line
// starting with "##".
func Conventions(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	loc := conventionsHeader.FindStringIndex(doc)
	if loc == nil {
		return nil
	}

	section := doc[loc[1]:]
	if end := nextSection.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	var items []string
	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		items = append(items, strings.TrimPrefix(trimmed, "- "))
		if len(items) == maxConventions {
			break
		}
	}
	return items
}

// HasAntiPatterns reports whether doc has an "## Anti-Patterns" heading
// followed by at least one line.
func HasAntiPatterns(doc string) bool {
	return antiPatternsHeader.MatchString(strings.ReplaceAll(doc, "\r\n", "\n"))
}

func anyExists(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
