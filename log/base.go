// Package log defines standard logging for take tools.
package log

import (
	"os"

	"github.com/inconshreveable/log15"
)

// Logger is the logging interface used throughout.
type Logger interface {
	With(ctx ...interface{}) Logger

	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Notice(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
}

type log15Adaptor struct {
	log15.Logger
}

// NewLog15 wraps a log15 logger.
func NewLog15(l log15.Logger) Logger {
	return log15Adaptor{
		Logger: l,
	}
}

func (l log15Adaptor) With(ctx ...interface{}) Logger {
	return log15Adaptor{
		Logger: l.New(ctx...),
	}
}

func (l log15Adaptor) Notice(msg string, ctx ...interface{}) {
	l.Info(msg, ctx...)
}

// NewLevel builds a logger writing records at lvl and above to stderr in
// terminal format. Records of every level are also passed to each of extra.
func NewLevel(lvl string, extra ...log15.Handler) (Logger, error) {
	l, err := log15.LvlFromString(lvl)
	if err != nil {
		return nil, err
	}
	handler := log15.LvlFilterHandler(l,
		log15.StreamHandler(os.Stderr, log15.TerminalFormat()),
	)
	if len(extra) > 0 {
		handler = log15.MultiHandler(append([]log15.Handler{handler}, extra...)...)
	}
	base := log15.New()
	base.SetHandler(handler)
	return NewLog15(base), nil
}

// NewDiscard builds a logger that drops all records.
func NewDiscard() Logger {
	base := log15.New()
	base.SetHandler(log15.DiscardHandler())
	return NewLog15(base)
}
