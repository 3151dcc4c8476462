// Package sessions reads prior session records for a project and ranks
// them by recency.
//
// Two record sources are supported: a directory of JSON files and a SQLite
// table. Both are read-only. Every failure inside a source degrades to an
// empty result at the Source boundary; the helpers underneath return
// classified errors (ErrNotFound, ErrMalformed, ErrUnavailable) so they can
// be tested directly.
package sessions

import (
	"errors"
	"math"
	"strconv"
	"time"
)

// UnknownDate is the normalized date of a record whose timestamp could not
// be interpreted.
const UnknownDate = "Unknown"

// isoMillis matches the ISO-8601 form produced for numeric epochs.
const isoMillis = "2006-01-02T15:04:05.000Z"

// maxEpochMillis bounds representable timestamps to ±100,000,000 days
// around the epoch, the range accepted by ECMAScript dates.
const maxEpochMillis = 8.64e15

var (
	// ErrNotFound reports a missing session directory or database file.
	ErrNotFound = errors.New("sessions: store not found")
	// ErrMalformed reports a record that could not be decoded.
	ErrMalformed = errors.New("sessions: malformed record")
	// ErrUnavailable reports a store that exists but cannot be read.
	ErrUnavailable = errors.New("sessions: store unavailable")
)

// Record is a raw session record as read from a source.
type Record struct {
	ID string
	// Time is the raw timestamp: a string, a number of epoch
	// milliseconds, or nil.
	Time    any
	Summary string
}

// Summary is a ranked session ready for display.
type Summary struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Summary string `json:"summary,omitempty"`
}

// NormalizeDate converts a raw timestamp into a string that sorts
// chronologically. Strings pass through unchanged, numbers are treated as
// epoch milliseconds and rendered as ISO-8601 UTC, everything else is
// UnknownDate.
func NormalizeDate(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return formatEpochMillis(v)
	case float32:
		return formatEpochMillis(float64(v))
	case int64:
		return formatEpochMillis(float64(v))
	case int:
		return formatEpochMillis(float64(v))
	default:
		return UnknownDate
	}
}

func formatEpochMillis(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return UnknownDate
	}
	t := time.UnixMilli(int64(math.Trunc(ms))).UTC()
	if t.Year() < 0 || t.Year() > 9999 {
		return UnknownDate
	}
	return t.Format(isoMillis)
}

// stringify renders a JSON identifier value. Numbers are accepted because
// some exporters write numeric ids.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

// truthy reports whether a decoded JSON value counts as present: non-empty
// strings, non-zero numbers, true, and any object or array.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case bool:
		return x
	default:
		return true
	}
}

// firstTruthy returns the first present value among keys, or nil.
func firstTruthy(data map[string]any, keys ...string) any {
	for _, k := range keys {
		if v := data[k]; truthy(v) {
			return v
		}
	}
	return nil
}

// firstString returns the first non-empty string value among keys.
func firstString(data map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := data[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
