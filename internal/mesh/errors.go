package mesh

import "errors"

// ErrNotFound is returned when an operation references a link that does not
// exist in the graph.
var ErrNotFound = errors.New("not found")
