package query

import "errors"

var (
	// ErrUnknownField is returned when a filter, order or group key names a
	// field the resolved entity does not have. Filter keys are fixed by the
	// query schema, so this indicates internal misuse of the builder rather
	// than bad external input.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownEntity is returned when a qualified filter key names an
	// entity that is neither the primary nor the joined entity.
	ErrUnknownEntity = errors.New("unknown entity reference")

	// ErrBadFilterValue is returned when a filter value does not satisfy the
	// operator's value constraint (e.g. __in without a slice).
	ErrBadFilterValue = errors.New("bad filter value")
)
