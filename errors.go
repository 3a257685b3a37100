package take

import "github.com/pkg/errors"

// Scanning errors. Operations return these unwrapped, so they may be compared
// directly.
var (
	// ErrTooShort occurs when a requested length or pattern is longer than
	// the input.
	ErrTooShort = errors.New("input too short")

	// ErrNotFound occurs when no offset satisfies the requested pattern or
	// predicate.
	ErrNotFound = errors.New("not found")

	// ErrMismatch occurs when the input does not begin with the expected
	// pattern.
	ErrMismatch = errors.New("unexpected prefix")

	// ErrNegativeCount occurs when Exact is asked for a negative number of
	// bytes.
	ErrNegativeCount = errors.New("negative count")
)
