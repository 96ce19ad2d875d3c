package schema

import "errors"

var (
	// ErrUnknownShape is returned when a property or annotation names a shape
	// the schema does not declare.
	ErrUnknownShape = errors.New("unknown shape")

	// ErrDuplicateShape is returned when two shapes share an id.
	ErrDuplicateShape = errors.New("duplicate shape id")

	// ErrInvalidSort is returned for an unrecognised sort kind or direction.
	ErrInvalidSort = errors.New("invalid sort")

	// ErrInvalidBound is returned for an unparseable cardinality bound.
	ErrInvalidBound = errors.New("invalid cardinality bound")
)
