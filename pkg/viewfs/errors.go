package viewfs

import (
	"errors"
)

// Errors produced by the namespace itself, as opposed to errors coming out
// of a backing store.
var (
	// ErrInvalidMountEntry indicates a bad mount configuration. It is
	// fatal: namespace construction fails and nothing is retried.
	ErrInvalidMountEntry = errors.New("invalid mount table entry")

	// ErrInvalidPath indicates a malformed virtual path or one that
	// escapes above the namespace root. Rejected before any backing
	// store is contacted.
	ErrInvalidPath = errors.New("invalid path")
)

// A lookup miss (no linked ancestor and no fallback able to satisfy the
// path) surfaces as fs.ErrNotExist, so callers handle it exactly like a
// miss reported by a plain backing store.
