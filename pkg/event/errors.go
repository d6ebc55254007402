package event

import "errors"

// Construction errors (spec.md §7).
var (
	// ErrEmptySteps is returned by New when steps is empty.
	ErrEmptySteps = errors.New("event: steps must contain at least one value")
	// ErrTimestepTooSmall is returned by New when duration/len(steps) rounds
	// to under 9ms, the permissive floor below the documented 10ms minimum.
	ErrTimestepTooSmall = errors.New("event: duration/len(steps) is too small")
)
