package sessions

import "database/sql"

// SetOpenDB swaps the database opener and returns a func restoring it.
// This file only compiles during `go test`.
func SetOpenDB(fn func(driverName, dsn string) (*sql.DB, error)) (restore func()) {
	prev := openDB
	openDB = fn
	return func() { openDB = prev }
}

// ReadOnlyDSN exposes readOnlyDSN to sessions_test.
var ReadOnlyDSN = readOnlyDSN

// DecodeRecord exposes decodeRecord to sessions_test.
var DecodeRecord = decodeRecord
