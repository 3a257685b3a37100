package telemetry

import (
	"github.com/mmcloughlin/take/log"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"
)

// InFlight counts and logs the number of parses currently running.
type InFlight struct {
	count *atomic.Int64
	start tally.Counter
	done  tally.Counter
	gauge tally.Gauge
	log   log.Logger
}

// NewInFlight builds an InFlight recording stats on scope and logging to l.
func NewInFlight(scope tally.Scope, l log.Logger) *InFlight {
	sub := scope.SubScope("inflight")
	return &InFlight{
		count: atomic.NewInt64(0),
		start: sub.Counter("start"),
		done:  sub.Counter("done"),
		gauge: sub.Gauge("current"),
		log:   log.ForComponent(l, "inflight"),
	}
}

// Start records the beginning of a parse.
func (f *InFlight) Start() {
	f.start.Inc(1)
	v := f.count.Inc()
	f.log.With("current", v).Debug("start")
	f.gauge.Update(float64(v))
}

// Done records the end of a parse.
func (f *InFlight) Done() {
	f.done.Inc(1)
	v := f.count.Dec()
	if v < 0 {
		panic("negative in-flight count")
	}
	f.log.With("current", v).Debug("done")
	f.gauge.Update(float64(v))
}

// Current returns the number of parses in flight.
func (f *InFlight) Current() int64 {
	return f.count.Load()
}
