// Package check provides error checking helpers.
package check

import (
	"io"

	"github.com/mmcloughlin/take/log"
	"github.com/pkg/errors"
)

// Is checks whether the root cause of err is target. Parsers wrap the take
// sentinel errors with context, so compare causes rather than values.
func Is(err, target error) bool {
	return err != nil && errors.Cause(err) == target
}

// MustClose closes c and panics on error.
func MustClose(c io.Closer) {
	if err := c.Close(); err != nil {
		panic(err)
	}
}

// Close closes c and logs an error, if it occurs.
func Close(logger log.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Err(logger, err, "close failed")
	}
}
