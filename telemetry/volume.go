package telemetry

import (
	"io"

	"github.com/uber-go/tally"
)

// Volume counts bytes passing through readers it wraps.
type Volume struct {
	c tally.Counter
}

// NewVolume builds a Volume incrementing c.
func NewVolume(c tally.Counter) *Volume {
	return &Volume{
		c: c,
	}
}

func (v *Volume) Write(d []byte) (int, error) {
	n := len(d)
	v.c.Inc(int64(n))
	return n, nil
}

// WrapReader counts everything read from r.
func (v *Volume) WrapReader(r io.Reader) io.Reader {
	return io.TeeReader(r, v)
}
