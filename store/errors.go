package store

import (
	"errors"
	"fmt"
)

// ErrETagMismatch is returned by Replace when the stored concurrency token
// no longer matches the supplied one.
var ErrETagMismatch = errors.New("etag does not match stored record")

// ErrAlreadyExists is returned by Insert when a record with the same
// partition and row key already exists.
var ErrAlreadyExists = errors.New("record already exists")

// Error marks any storage-operation failure. It carries the operation and
// table it occurred on and wraps the underlying cause.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op string, table string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Table: table, Err: err}
}
