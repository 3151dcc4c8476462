package sessions

import (
	"slices"
	"strings"
)

// RankOptions tunes Rank for a particular source.
type RankOptions struct {
	// DropInvalid removes records with an empty ID or an UnknownDate.
	// The directory source sets it; SQLite rows are well-formed.
	DropInvalid bool
}

// Rank normalizes record dates, optionally drops invalid records, sorts
// the rest newest first and keeps at most limit entries. The sort is
// stable: records with equal dates keep their input order.
func Rank(records []Record, limit int, opts RankOptions) []Summary {
	if limit <= 0 {
		return []Summary{}
	}

	ranked := make([]Summary, 0, len(records))
	for _, r := range records {
		s := Summary{ID: r.ID, Date: NormalizeDate(r.Time), Summary: r.Summary}
		if opts.DropInvalid && (s.ID == "" || s.Date == UnknownDate) {
			continue
		}
		ranked = append(ranked, s)
	}

	slices.SortStableFunc(ranked, func(a, b Summary) int {
		return strings.Compare(b.Date, a.Date)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
