package paramcache

import "errors"

var (
	// ErrWrongValueType is returned by Node.Update when value's Kind does
	// not match the Kind the Node was constructed with.
	ErrWrongValueType = errors.New("paramcache: value kind does not match node's expected kind")
	// ErrEmptyCache is returned by VelocityByEntry when the cache holds no
	// samples, or when the two samples it compares carry the same
	// timestamp (no elapsed time to divide by).
	ErrEmptyCache = errors.New("paramcache: cache is empty")
	// ErrCacheTooSmall is returned by VelocityByEntry when entriesBack
	// exceeds the number of samples currently held.
	ErrCacheTooSmall = errors.New("paramcache: not enough entries for requested lookback")
)
