package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrClosed      = errors.New("db: store closed")
)

// Op constants name the failed operation for error context. They follow the
// Redis command names; the embedded store reuses them.
const (
	OpPing   = "PING"
	OpDel    = "DEL"
	OpExists = "EXISTS"
	OpScan   = "SCAN"
	OpGet    = "GET"
	OpSet    = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
