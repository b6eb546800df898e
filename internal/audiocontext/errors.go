package audiocontext

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/audiograph"
)

var (
	// ErrIndexSize is returned for output or input indices out of range.
	ErrIndexSize = audiograph.ErrIndexSize
	// ErrForeignContext is returned when an edge would join two contexts.
	ErrForeignContext = errors.New("node belongs to a different context")
	// ErrContextClosed is returned for edits after Close.
	ErrContextClosed = errors.New("audio context is closed")
	// ErrInvalidState covers lifecycle misuse: starting twice, stopping
	// before start, toggling a node that does not own its state.
	ErrInvalidState = errors.New("invalid node state")
	// ErrNative wraps failures of the native engine.
	ErrNative = errors.New("native engine call failed")
	// ErrInvalidSpec is returned by CreateNode for malformed node specs.
	ErrInvalidSpec = errors.New("invalid node spec")
)

func nativeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNative, err)
}
