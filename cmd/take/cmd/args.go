package cmd

import (
	"io"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/mmcloughlin/take/log"
	"github.com/mmcloughlin/take/telemetry"
	"github.com/mmcloughlin/take/tordir"
	"github.com/spf13/pflag"
	"github.com/uber-go/tally"
)

// Defined argument sets.
var (
	logging     = new(Logging)
	metrics     = new(Telemetry)
	authorities = new(DirectoryAuthorities)
)

// Module is something that can be configured with command line arguments.
type Module interface {
	Attach(*pflag.FlagSet)
}

// Register adds a list of modules to the given flag set.
func Register(f *pflag.FlagSet, modules ...Module) {
	for _, m := range modules {
		m.Attach(f)
	}
}

// Logging configures log output.
type Logging struct {
	level string
	file  string
}

// Attach configures command line flags.
func (g *Logging) Attach(f *pflag.FlagSet) {
	f.StringVar(&g.level, "log-level", "info", "minimum level logged to the terminal")
	f.StringVarP(&g.file, "logfile", "l", "", "additionally log everything to this file, as json")
}

// Logger builds the configured logger.
func (g *Logging) Logger() (log.Logger, error) {
	var extra []log15.Handler
	if g.file != "" {
		fh, err := log15.FileHandler(g.file, log15.JsonFormat())
		if err != nil {
			return nil, err
		}
		extra = append(extra, fh)
	}
	return log.NewLevel(g.level, extra...)
}

// Telemetry configures metrics reporting.
type Telemetry struct {
	interval time.Duration
}

// Attach configures command line flags.
func (m *Telemetry) Attach(f *pflag.FlagSet) {
	f.DurationVar(&m.interval, "metrics-interval", 0, "report metrics to the log at this interval (0 reports once on exit)")
}

// Scope builds a root metrics scope reporting to l.
func (m *Telemetry) Scope(l log.Logger) (tally.Scope, io.Closer) {
	return telemetry.NewRootScope("take", l, m.interval)
}

// DirectoryAuthorities configures which directory authorities to fetch from.
type DirectoryAuthorities struct {
	public bool
	addrs  []string
}

// Attach configures command line flags.
func (a *DirectoryAuthorities) Attach(f *pflag.FlagSet) {
	f.BoolVar(&a.public, "public", false, "fetch from public directory authorities")
	f.StringSliceVar(&a.addrs, "authorities", []string{"127.0.0.1:7000"}, "directory authorities to fetch from")
}

// Addresses returns configured directory authority addresses.
func (a *DirectoryAuthorities) Addresses() []string {
	if a.public {
		return tordir.Authorities
	}
	return a.addrs
}
