// Package protover implements types for protocol version strings.
package protover

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mmcloughlin/take"
	"github.com/pkg/errors"
)

// Parsing errors.
var (
	ErrParseMissingEquals = errors.New("protocol entry missing '='")
	ErrParseEmptyName     = errors.New("empty protocol name")
	ErrParseBadVersion    = errors.New("invalid protocol version")
	ErrParseBadRange      = errors.New("protocol version range is inverted")
	ErrParseDuplicate     = errors.New("protocol listed more than once")
)

// Reference: https://github.com/torproject/torspec/blob/f66d1826c0b32d307898bba081dbf8ef598d4037/tor-spec.txt#L1842-L1854
//
//	   Starting in version 0.2.9.4-alpha, the initial required protocols for
//	   clients that we will Recommend and Require are:
//
//	      Cons=1-2 Desc=1-2 DirCache=1 HSDir=2 HSIntro=3 HSRend=1 Link=4
//	      LinkAuth=1 Microdesc=1-2 Relay=2
//
//	   For relays we will Require:
//
//	      Cons=1 Desc=1 DirCache=1 HSDir=2 HSIntro=3 HSRend=1 Link=3-4
//	      LinkAuth=1 Microdesc=1 Relay=1-2
//
//	   For relays, we will additionally Recommend all protocols which we
//	   recommend for clients.
//

// Expectations for client and relay implementations.
var (
	ClientRequired = SupportedProtocols{
		Cons:      {NewVersionRange(1, 2)},
		Desc:      {NewVersionRange(1, 2)},
		DirCache:  {SingleVersion(1)},
		HSDir:     {SingleVersion(2)},
		HSIntro:   {SingleVersion(3)},
		HSRend:    {SingleVersion(1)},
		Link:      {SingleVersion(4)},
		LinkAuth:  {SingleVersion(1)},
		Microdesc: {NewVersionRange(1, 2)},
		Relay:     {SingleVersion(2)},
	}
	ClientRecommended = ClientRequired

	RelayRequired = SupportedProtocols{
		Cons:      {SingleVersion(1)},
		Desc:      {SingleVersion(1)},
		DirCache:  {SingleVersion(1)},
		HSDir:     {SingleVersion(2)},
		HSIntro:   {SingleVersion(3)},
		HSRend:    {SingleVersion(1)},
		Link:      {NewVersionRange(3, 4)},
		LinkAuth:  {SingleVersion(1)},
		Microdesc: {SingleVersion(1)},
		Relay:     {NewVersionRange(1, 2)},
	}
	RelayRecommended = ClientRecommended
)

// Reference: https://github.com/torproject/tor/blob/d8604b8729b24f964d78d188b89493098d3eb92b/src/or/protover.c#L34-L49
//
//	/** Mapping between protocol type string and protocol type. */
//	static const struct {
//	  protocol_type_t protover_type;
//	  const char *name;
//	} PROTOCOL_NAMES[] = {
//	  { PRT_LINK, "Link" },
//	  { PRT_LINKAUTH, "LinkAuth" },
//	  { PRT_RELAY, "Relay" },
//	  { PRT_DIRCACHE, "DirCache" },
//	  { PRT_HSDIR, "HSDir" },
//	  { PRT_HSINTRO, "HSIntro" },
//	  { PRT_HSREND, "HSRend" },
//	  { PRT_DESC, "Desc" },
//	  { PRT_MICRODESC, "Microdesc"},
//	  { PRT_CONS, "Cons" }
//	};
//

// ProtocolName is the name for a subset of the Tor protocol.
type ProtocolName string

// Recognized protocol names.
const (
	Link      ProtocolName = "Link"
	LinkAuth  ProtocolName = "LinkAuth"
	Relay     ProtocolName = "Relay"
	DirCache  ProtocolName = "DirCache"
	HSDir     ProtocolName = "HSDir"
	HSIntro   ProtocolName = "HSIntro"
	HSRend    ProtocolName = "HSRend"
	Desc      ProtocolName = "Desc"
	Microdesc ProtocolName = "Microdesc"
	Cons      ProtocolName = "Cons"
)

// Reference: https://github.com/torproject/torspec/blob/4074b891e53e8df951fc596ac6758d74da290c60/dir-spec.txt#L774-L798
//
//	   "proto" SP Entries NL
//
//	       [At most one.]
//
//	       Entries =
//	       Entries = Entry
//	       Entries = Entry SP Entries
//
//	       Entry = Keyword "=" Values
//
//	       Values = Value
//	       Values = Value "," Values
//
//	       Value = Int
//	       Value = Int "-" Int
//
//	       Int = NON_ZERO_DIGIT
//	       Int = Int DIGIT
//
//	       Each 'Entry' in the "proto" line indicates that the Tor relay supports
//	       one or more versions of the protocol in question.  Entries should be
//	       sorted by keyword.  Values should be numerically ascending within each
//	       entry.  (This implies that there should be no overlapping ranges.)
//	       Ranges should be represented as compactly as possible. Ints must be no
//	       more than 2^32 - 1.
//

// VersionRange is an inclusive range of protocol versions.
type VersionRange struct {
	low  int
	high int
}

// SingleVersion is the range containing only v.
func SingleVersion(v int) VersionRange {
	return VersionRange{
		low:  v,
		high: v,
	}
}

// NewVersionRange builds the range l-h. Panics if h < l.
func NewVersionRange(l, h int) VersionRange {
	if h < l {
		panic("bad range")
	}
	return VersionRange{
		low:  l,
		high: h,
	}
}

func (v VersionRange) String() string {
	if v.high < v.low {
		panic("bad range")
	}
	if v.low == v.high {
		return strconv.Itoa(v.low)
	}
	return fmt.Sprintf("%d-%d", v.low, v.high)
}

// Contains reports whether version is within the range.
func (v VersionRange) Contains(version int) bool {
	return v.low <= version && version <= v.high
}

// SupportedProtocols maps each protocol to the versions supported.
type SupportedProtocols map[ProtocolName][]VersionRange

func New() SupportedProtocols {
	return make(SupportedProtocols)
}

func (s SupportedProtocols) Supports(n ProtocolName, v VersionRange) {
	_, ok := s[n]
	if !ok {
		s[n] = nil
	}
	s[n] = append(s[n], v)
}

// Has reports whether version v of protocol n is supported.
func (s SupportedProtocols) Has(n ProtocolName, v int) bool {
	for _, r := range s[n] {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

func (s SupportedProtocols) Strings() []string {
	var parts []string
	for n, ranges := range s {
		parts = append(parts, string(n)+"="+versionRangesString(ranges))
	}
	sort.Strings(parts)
	return parts
}

func (s SupportedProtocols) String() string {
	return strings.Join(s.Strings(), " ")
}

func versionRangesString(ranges []VersionRange) string {
	var parts []string
	for _, v := range ranges {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}

// Parse parses the entries of a "proto" line, for example
// "Cons=1-2 Link=1-4 Relay=1-2".
func Parse(line string) (SupportedProtocols, error) {
	s := New()
	rest := line
	for len(rest) > 0 {
		var entry string
		entry, rest = field(rest, " ")
		if err := s.parseEntry(entry); err != nil {
			return nil, errors.Wrapf(err, "entry %q", entry)
		}
	}
	return s, nil
}

func (s SupportedProtocols) parseEntry(entry string) error {
	name, values, err := take.UntilErr(entry, "=", ErrParseMissingEquals)
	if err != nil {
		return err
	}
	if name == "" {
		return ErrParseEmptyName
	}
	_, values, _ = take.Exact(values, 1)

	n := ProtocolName(name)
	if _, ok := s[n]; ok {
		return ErrParseDuplicate
	}
	s[n] = nil
	for len(values) > 0 {
		var value string
		value, values = field(values, ",")
		v, err := ParseVersionRange(value)
		if err != nil {
			return err
		}
		s.Supports(n, v)
	}
	if len(s[n]) == 0 {
		return ErrParseBadVersion
	}
	return nil
}

// ParseVersionRange parses a single version "N" or range "N-M".
func ParseVersionRange(value string) (VersionRange, error) {
	lo, hi := field(value, "-")
	l, err := parseInt(lo)
	if err != nil {
		return VersionRange{}, err
	}
	if _, _, ok := take.Maybe(value[len(lo):], "-"); !ok {
		return SingleVersion(l), nil
	}
	h, err := parseInt(hi)
	if err != nil {
		return VersionRange{}, err
	}
	if h < l {
		return VersionRange{}, ErrParseBadRange
	}
	return NewVersionRange(l, h), nil
}

// parseInt parses a non-zero decimal integer without leading zeros, no
// larger than 2^32 - 1.
func parseInt(s string) (int, error) {
	if _, _, ok := take.Maybe(s, "0"); ok || s == "" {
		return 0, ErrParseBadVersion
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrParseBadVersion
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, ErrParseBadVersion
	}
	return int(v), nil
}

// field splits s at the first sep, dropping the separator. If sep does not
// occur the whole of s is returned.
func field(s, sep string) (string, string) {
	head, rest, err := take.Until(s, sep)
	if err != nil {
		return s, ""
	}
	_, rest, _ = take.Exact(rest, len(sep))
	return head, rest
}
