package audiograph

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordMissing means the handle was never issued by this store or its
	// record has been released.
	ErrRecordMissing = errors.New("connection record not found")
	// ErrDuplicateEdge is returned when inserting an edge that already exists.
	ErrDuplicateEdge = errors.New("edge already exists")
	// ErrEdgeNotFound is returned when removing or querying an edge that does not exist.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrAmbiguousEdge means an edge predicate matched more than one entry.
	// The store is corrupt when this happens.
	ErrAmbiguousEdge = errors.New("more than one edge matches")
	// ErrListenerNotFound is returned when removing a listener twice.
	ErrListenerNotFound = errors.New("state listener not found")
	// ErrIndexSize is returned for output or input indices out of range.
	ErrIndexSize = errors.New("port index out of range")
)

// GraphError is a structured error naming the store operation that failed.
type GraphError struct {
	Op     string // Operation that failed (e.g. "AddEdge", "RemoveListener")
	Entity string // Record the operation was addressing, e.g. "node#3/1"
	Cause  error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the cause matches target.
func (e *GraphError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

func newError(op string, entity fmt.Stringer, cause error) error {
	return &GraphError{Op: op, Entity: entity.String(), Cause: cause}
}

// IsStructural reports whether err is one of the store's invariant errors.
func IsStructural(err error) bool {
	return errors.Is(err, ErrRecordMissing) ||
		errors.Is(err, ErrDuplicateEdge) ||
		errors.Is(err, ErrEdgeNotFound) ||
		errors.Is(err, ErrAmbiguousEdge) ||
		errors.Is(err, ErrListenerNotFound)
}
