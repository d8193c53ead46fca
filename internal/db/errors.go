package db

import "errors"

// ErrNoSubscribers signals a publish that reached no subscriber.
var ErrNoSubscribers = errors.New("db: no subscribers")

// Op constants map to Redis command names for error context.
const (
	OpPing    = "PING"
	OpPublish = "PUBLISH"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
