package events

import "errors"

var (
	// ErrUnknownEventKind is returned for an event_type outside the closed
	// set of input kinds.
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrMalformedInput is returned when a payload cannot be decoded or
	// fails validation.
	ErrMalformedInput = errors.New("malformed input")
)
