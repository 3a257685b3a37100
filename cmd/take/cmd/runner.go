package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mmcloughlin/take/check"
	"github.com/mmcloughlin/take/debug"
	"github.com/mmcloughlin/take/log"
	"github.com/mmcloughlin/take/telemetry"
	"github.com/pkg/errors"
)

// ParseFunc parses one input, returning the number of items found.
type ParseFunc func(name string, b []byte) (int, error)

// runner applies a parser to inputs, with logging and metrics.
type runner struct {
	log     log.Logger
	metrics *telemetry.Metrics
	closer  io.Closer

	// dump receives a hex dump of every input that fails to parse, if set.
	dump   io.Writer
	dumpmu sync.Mutex
}

// newRunner builds a runner for the named format from the configured flags.
func newRunner(format string) (*runner, error) {
	l, err := logging.Logger()
	if err != nil {
		return nil, err
	}
	l = log.ForComponent(l, format)

	scope, closer := metrics.Scope(l)
	scope = scope.Tagged(map[string]string{"format": format})

	r := &runner{
		log:     l,
		metrics: telemetry.NewMetrics(scope, l),
		closer:  closer,
	}
	if dump {
		r.dump = os.Stderr
	}
	return r, nil
}

// Close flushes metrics.
func (r *runner) Close() {
	check.Close(r.log, r.closer)
}

// Bytes parses in-memory input.
func (r *runner) Bytes(name string, b []byte, parse ParseFunc) error {
	l := log.ForInput(r.log, name)
	return r.metrics.Parse(func() (int, error) {
		n, err := parse(name, b)
		if err != nil {
			log.WithBytes(l, "data", b).Debug("failing input")
			log.Err(l, err, "parse failed")
			r.dumpInput(l, name, b)
			return 0, err
		}
		l.With("items", n).Info("parsed")
		return n, nil
	})
}

// dumpInput writes the input as a hex dump and a Go literal. Dumps from
// concurrent parses are not interleaved.
func (r *runner) dumpInput(l log.Logger, name string, b []byte) {
	if r.dump == nil {
		return
	}
	r.dumpmu.Lock()
	defer r.dumpmu.Unlock()

	if err := debug.DumpBytes(r.dump, name, b); err != nil {
		log.Err(l, err, "dump failed")
		return
	}
	if _, err := fmt.Fprintln(r.dump, debug.GoStringByteArray(b)); err != nil {
		log.Err(l, err, "dump failed")
	}
}

// File reads and parses the named file.
func (r *runner) File(filename string, parse ParseFunc) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "could not open input")
	}
	defer check.Close(r.log, f)

	b, err := io.ReadAll(r.metrics.Bytes.WrapReader(f))
	if err != nil {
		return errors.Wrap(err, "could not read input")
	}
	return r.Bytes(filename, b, parse)
}

// Files parses every named file concurrently. The first error is returned
// once all have completed.
func (r *runner) Files(filenames []string, parse ParseFunc) error {
	errs := make([]error, len(filenames))
	var wg sync.WaitGroup
	for i, filename := range filenames {
		wg.Add(1)
		go func(i int, filename string) {
			defer wg.Done()
			errs[i] = r.File(filename, parse)
		}(i, filename)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return errors.Wrap(err, filenames[i])
		}
	}
	return nil
}
