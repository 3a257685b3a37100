// Package telemetry provides monitoring utilities.
package telemetry

import (
	"io"
	"time"

	"github.com/mmcloughlin/take/log"
	"github.com/mmcloughlin/take/telemetry/logging"
	"github.com/uber-go/tally"
	"github.com/uber-go/tally/multi"
)

// Metrics records statistics about parsed inputs.
type Metrics struct {
	Inputs   tally.Counter
	Items    tally.Counter
	Failures tally.Counter
	Duration tally.Timer
	Bytes    *Volume
	InFlight *InFlight
}

// NewMetrics builds Metrics on the given scope.
func NewMetrics(scope tally.Scope, l log.Logger) *Metrics {
	return &Metrics{
		Inputs:   scope.Counter("inputs"),
		Items:    scope.Counter("items"),
		Failures: scope.Counter("failures"),
		Duration: scope.Timer("parse_duration"),
		Bytes:    NewVolume(scope.Counter("input_bytes")),
		InFlight: NewInFlight(scope, l),
	}
}

// Parse runs and records a parse of one input. The function returns the
// number of items found.
func (m *Metrics) Parse(f func() (int, error)) error {
	m.Inputs.Inc(1)
	m.InFlight.Start()
	defer m.InFlight.Done()

	sw := m.Duration.Start()
	n, err := f()
	sw.Stop()

	if err != nil {
		m.Failures.Inc(1)
		return err
	}
	m.Items.Inc(int64(n))
	return nil
}

// NewRootScope builds a tally scope reporting to the logger l and to any
// additional reporters. The returned closer flushes and stops reporting.
func NewRootScope(prefix string, l log.Logger, interval time.Duration, reporters ...tally.CachedStatsReporter) (tally.Scope, io.Closer) {
	reporters = append([]tally.CachedStatsReporter{logging.NewReporter(l)}, reporters...)
	return tally.NewRootScope(tally.ScopeOptions{
		Prefix:         prefix,
		Tags:           map[string]string{},
		CachedReporter: multi.NewMultiCachedReporter(reporters...),
	}, interval)
}
