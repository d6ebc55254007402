package haptic

import "errors"

// Programmer-contract and configuration errors (spec.md §7).
var (
	// ErrDuplicateID is returned by GlobalMap.AddInputNode when the id is
	// already registered.
	ErrDuplicateID = errors.New("haptic: input node id already exists")
	// ErrNotFound is returned when an operation references an unknown
	// input node id.
	ErrNotFound = errors.New("haptic: input node not found")
	// ErrBadChunkLength is returned by DecodeNodes when the byte slice is
	// not a multiple of 8 bytes long.
	ErrBadChunkLength = errors.New("haptic: node map byte length is not a multiple of 8")
)
