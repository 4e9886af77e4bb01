package processor

import (
	"fmt"

	"github.com/specialistvlad/meshviz/internal/events"
	"github.com/specialistvlad/meshviz/internal/mesh"
)

// Error reports a failed transition. It unwraps to the underlying cause,
// typically mesh.ErrNotFound or events.ErrUnknownEventKind, so callers that
// care can still tell them apart with errors.Is.
type Error struct {
	Kind   events.Kind
	Source mesh.NodeID
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("failed to handle event: %v", e.Err)
	}
	return fmt.Sprintf("failed to handle %s event from %q: %v", e.Kind, e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
