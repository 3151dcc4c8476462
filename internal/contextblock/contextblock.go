// Package contextblock assembles the text injected into a compaction.
package contextblock

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/opencode-memento/internal/sessions"
)

// Section headings, in emission order.
const (
	HeadingSessions = "### Recent Sessions"
	HeadingPatterns = "### Key Patterns from Prior Work"
	HeadingNotes    = "### Project-Specific Notes"
)

// DefaultEmptySummary is used when Input.EmptySummary is blank.
const DefaultEmptySummary = "No summary"

// Input holds everything a context block can contain.
type Input struct {
	Title    string
	Sessions []sessions.Summary
	// EmptySummary replaces a missing session summary.
	EmptySummary string
	Patterns     []string
	Notes        []string
}

// Block is an assembled context block.
type Block struct {
	Text string
	// Sections counts the non-empty sections in Text.
	Sections int
	// Lines counts every line of Text, title and separators included.
	Lines int
}

// Assemble renders in as a markdown block: the title, then one section
// per non-empty group, each followed by a blank line. It returns false
// when every group is empty; no title-only block is ever produced.
func Assemble(in Input) (Block, bool) {
	lines := []string{in.Title, ""}
	sections := 0

	if len(in.Sessions) > 0 {
		placeholder := in.EmptySummary
		if placeholder == "" {
			placeholder = DefaultEmptySummary
		}
		items := make([]string, len(in.Sessions))
		for i, s := range in.Sessions {
			summary := s.Summary
			if summary == "" {
				summary = placeholder
			}
			items[i] = fmt.Sprintf("- %s (%s): %s", s.ID, s.Date, summary)
		}
		lines = appendSection(lines, HeadingSessions, items)
		sections++
	}

	if len(in.Patterns) > 0 {
		lines = appendSection(lines, HeadingPatterns, bullets(in.Patterns))
		sections++
	}

	if len(in.Notes) > 0 {
		lines = appendSection(lines, HeadingNotes, bullets(in.Notes))
		sections++
	}

	if sections == 0 {
		return Block{}, false
	}
	return Block{
		Text:     strings.Join(lines, "\n"),
		Sections: sections,
		Lines:    len(lines),
	}, true
}

func appendSection(lines []string, heading string, items []string) []string {
	lines = append(lines, heading, "")
	lines = append(lines, items...)
	return append(lines, "")
}

// bullets prefixes each item with "- " unless it already carries one.
func bullets(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		if strings.HasPrefix(item, "- ") {
			out[i] = item
			continue
		}
		out[i] = "- " + item
	}
	return out
}
