package database

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a StorageError.
type Kind int

const (
	// IoFailure means the backing file or its directory could not be created
	// or opened. Fatal at startup.
	IoFailure Kind = iota + 1
	// SchemaFailure means the schema could not be applied to the file.
	// Fatal at startup.
	SchemaFailure
	// OperationFailure means a single call failed. The store stays usable.
	OperationFailure
	// LockUnavailable means the connection lock was not acquired within the
	// configured lock timeout.
	LockUnavailable
)

func (k Kind) String() string {
	switch k {
	case IoFailure:
		return "io failure"
	case SchemaFailure:
		return "schema failure"
	case OperationFailure:
		return "operation failure"
	case LockUnavailable:
		return "lock unavailable"
	default:
		return "unknown"
	}
}

// ErrInvalid is wrapped by OperationFailure errors caused by rejected input.
var ErrInvalid = errors.New("invalid argument")

// StorageError is returned by every Store method that fails.
type StorageError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("storage %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Cause lets errors.Cause walk past the StorageError.
func (e *StorageError) Cause() error { return e.Err }

// KindOf returns the Kind of the first StorageError in err's chain, or 0.
func KindOf(err error) Kind {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func newError(kind Kind, op string, err error) error {
	return &StorageError{Kind: kind, Op: op, Err: err}
}

func invalidf(op, format string, args ...interface{}) error {
	return newError(OperationFailure, op, errors.Wrapf(ErrInvalid, format, args...))
}
