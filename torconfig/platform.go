package torconfig

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/mmcloughlin/take"
	"github.com/pkg/errors"
)

// ErrParsePlatform occurs when a platform string is not of the form
// "Software Version on OS".
var ErrParsePlatform = errors.New("could not parse platform")

// Platform identifies the software a relay runs.
type Platform struct {
	Software string
	Version  string
	OS       string
}

func NewPlatform(software, version, os string) Platform {
	return Platform{
		Software: software,
		Version:  version,
		OS:       os,
	}
}

func NewPlatformHostOS(software, version string) Platform {
	return NewPlatform(software, version, runtime.GOOS)
}

// ParsePlatform parses a platform string such as "Tor 0.2.9.9 on Linux".
func ParsePlatform(s string) (Platform, error) {
	software, rest, err := take.UntilErr(s, " ", ErrParsePlatform)
	if err != nil {
		return Platform{}, err
	}
	_, rest, _ = take.Exact(rest, 1)

	version, os, err := take.UntilErr(rest, " on ", ErrParsePlatform)
	if err != nil {
		return Platform{}, err
	}
	_, os, _ = take.Exact(os, len(" on "))

	if software == "" || version == "" || os == "" {
		return Platform{}, ErrParsePlatform
	}
	return NewPlatform(software, version, os), nil
}

func (p Platform) String() string {
	return fmt.Sprintf("%s %s on %s", p.Software, p.Version, strings.Title(p.OS))
}
