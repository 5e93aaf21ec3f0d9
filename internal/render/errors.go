package render

import "errors"

// Invalid input structure. These abort a render; they are never defaulted
// because a guess would end up in published documentation.
var (
	// ErrMalformedReference is returned when a deprecation notice mentions an
	// API with a suffix shape the rewriter does not understand.
	ErrMalformedReference = errors.New("malformed API reference in deprecation notice")

	// ErrMissingContext is returned when a record lacks the owning class,
	// method or function needed to build its reference.
	ErrMissingContext = errors.New("change record is missing identity context")
)
