// Package logging reports tally metrics to a logger.
package logging

import (
	"time"

	"github.com/mmcloughlin/take/log"
	"github.com/uber-go/tally"
)

// metricLogger adds tags to a logger to report the given metric.
func metricLogger(l log.Logger, name, metricType string, tags map[string]string) log.Logger {
	return log.WithTags(l, tags).With("metric_name", name).With("metric_type", metricType)
}

// reporter publishes metrics to a logger.
type reporter struct {
	l log.Logger
}

// NewReporter builds a tally.CachedStatsReporter reporting metrics to the given
// logger.
func NewReporter(l log.Logger) tally.CachedStatsReporter {
	return reporter{
		l: log.ForComponent(l, "metrics"),
	}
}

// Capabilities returns the capabilities description of the reporter.
func (r reporter) Capabilities() tally.Capabilities {
	return r
}

// Reporting returns whether the reporter has the ability to actively report.
func (r reporter) Reporting() bool { return false }

// Tagging returns true.
func (r reporter) Tagging() bool { return true }

// AllocateCounter pre allocates a counter logger.
func (r reporter) AllocateCounter(name string, tags map[string]string) tally.CachedCount {
	return counter{
		l: metricLogger(r.l, name, "counter", tags),
	}
}

type counter struct {
	l log.Logger
}

func (c counter) ReportCount(v int64) {
	c.l.With("value", v).Debug("report counter")
}

// AllocateGauge pre allocates a gauge logger.
func (r reporter) AllocateGauge(name string, tags map[string]string) tally.CachedGauge {
	return gauge{
		l: metricLogger(r.l, name, "gauge", tags),
	}
}

type gauge struct {
	l log.Logger
}

func (g gauge) ReportGauge(v float64) {
	g.l.With("value", v).Debug("report gauge")
}

// AllocateTimer pre allocates a timer logger.
func (r reporter) AllocateTimer(name string, tags map[string]string) tally.CachedTimer {
	return timer{
		l: metricLogger(r.l, name, "timer", tags),
	}
}

type timer struct {
	l log.Logger
}

func (t timer) ReportTimer(d time.Duration) {
	t.l.With("value", d.String()).Debug("report timer")
}

// AllocateHistogram pre allocates a histogram logger. Each bucket logs its
// bounds alongside the sample count.
func (r reporter) AllocateHistogram(name string, tags map[string]string, buckets tally.Buckets) tally.CachedHistogram {
	return histogram{
		l: metricLogger(r.l, name, "histogram", tags),
	}
}

type histogram struct {
	l log.Logger
}

func (h histogram) ValueBucket(lower, upper float64) tally.CachedHistogramBucket {
	return bucket{l: h.l.With("lower", lower, "upper", upper)}
}

func (h histogram) DurationBucket(lower, upper time.Duration) tally.CachedHistogramBucket {
	return bucket{l: h.l.With("lower", lower.String(), "upper", upper.String())}
}

type bucket struct {
	l log.Logger
}

func (b bucket) ReportSamples(v int64) {
	b.l.With("samples", v).Debug("report histogram bucket")
}

// Flush is a no-op.
func (r reporter) Flush() {}
