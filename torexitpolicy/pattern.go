package torexitpolicy

import (
	"net"
	"strconv"

	"github.com/mmcloughlin/take"
	"github.com/pkg/errors"
)

// Parsing errors.
var (
	ErrParseBadAction  = errors.New("expected accept or reject")
	ErrParseBadAddress = errors.New("invalid address specification")
	ErrParseBadPort    = errors.New("invalid port specification")
)

// AddrPortPattern matches a network and a range of ports. A nil Network
// matches any address.
type AddrPortPattern struct {
	Network  *net.IPNet
	PortLow  uint16
	PortHigh uint16
}

// Matches checks whether ip and port fall within the pattern.
func (p AddrPortPattern) Matches(ip net.IP, port uint16) bool {
	if port < p.PortLow || port > p.PortHigh {
		return false
	}
	return p.Network == nil || p.Network.Contains(ip)
}

// Describe renders the pattern in exitpattern syntax.
func (p AddrPortPattern) Describe() string {
	return p.describeAddr() + ":" + p.describePorts()
}

func (p AddrPortPattern) describeAddr() string {
	if p.Network == nil {
		return "*"
	}
	ones, bits := p.Network.Mask.Size()
	s := p.Network.IP.String()
	if bits == 8*net.IPv6len {
		s = "[" + s + "]"
	}
	if ones != bits {
		s += "/" + strconv.Itoa(ones)
	}
	return s
}

func (p AddrPortPattern) describePorts() string {
	switch {
	case p.PortLow == 1 && p.PortHigh == 65535:
		return "*"
	case p.PortLow == p.PortHigh:
		return strconv.Itoa(int(p.PortLow))
	default:
		return strconv.Itoa(int(p.PortLow)) + "-" + strconv.Itoa(int(p.PortHigh))
	}
}

// Reference: https://github.com/torproject/torspec/blob/4074b891e53e8df951fc596ac6758d74da290c60/dir-spec.txt#L1186-L1201
//
//	   exitpattern ::= addrspec ":" portspec
//	   portspec ::= "*" | port | port "-" port
//	   port ::= an integer between 1 and 65535, inclusive.
//	      [Some implementations incorrectly generate ports with value 0.
//	       Implementations SHOULD accept this, and SHOULD NOT generate it.
//	       Connections to port 0 are never permitted.]
//	   addrspec ::= "*" | ip4spec | ip6spec
//	   ip4spec ::= ip4 | ip4 "/" num_ip4_bits | ip4 "/" ip4mask
//	   ip4 ::= an IPv4 address in dotted-quad format
//	   ip4mask ::= an IPv4 mask in dotted-quad format
//	   num_ip4_bits ::= an integer between 0 and 32
//	   ip6spec ::= ip6 | ip6 "/" num_ip6_bits
//	   ip6 ::= an IPv6 address, surrounded by square brackets.
//	   num_ip6_bits ::= an integer between 0 and 128
//

// ParsePattern parses an exitpattern.
func ParsePattern(s string) (AddrPortPattern, error) {
	addr, rest, err := splitAddr(s)
	if err != nil {
		return AddrPortPattern{}, err
	}

	p := AddrPortPattern{}
	if p.Network, err = parseAddrSpec(addr); err != nil {
		return AddrPortPattern{}, err
	}
	if p.PortLow, p.PortHigh, err = parsePortSpec(rest); err != nil {
		return AddrPortPattern{}, err
	}
	return p, nil
}

// splitAddr separates the addrspec from the portspec. Bracketed IPv6
// addresses contain colons, so the bracket is consumed first.
func splitAddr(s string) (string, string, error) {
	if _, inner, ok := take.Maybe(s, "["); ok {
		ip, rest, err := take.UntilErr(inner, "]", ErrParseBadAddress)
		if err != nil {
			return "", "", err
		}
		_, rest, _ = take.Exact(rest, 1)
		mask, rest, err := take.UntilErr(rest, ":", ErrParseBadPort)
		if err != nil {
			return "", "", err
		}
		_, rest, _ = take.Exact(rest, 1)
		return "[" + ip + "]" + mask, rest, nil
	}

	addr, rest, err := take.UntilErr(s, ":", ErrParseBadPort)
	if err != nil {
		return "", "", err
	}
	_, rest, _ = take.Exact(rest, 1)
	return addr, rest, nil
}

func parseAddrSpec(s string) (*net.IPNet, error) {
	if s == "*" {
		return nil, nil
	}

	host, mask := s, ""
	if h, m, err := take.Until(s, "/"); err == nil {
		host, mask = h, m
	}

	bits := 8 * net.IPv4len
	if _, inner, ok := take.Maybe(host, "["); ok {
		v6, tail, err := take.UntilErr(inner, "]", ErrParseBadAddress)
		if err != nil || len(tail) != 1 {
			return nil, ErrParseBadAddress
		}
		host, bits = v6, 8*net.IPv6len
	}

	ip := net.ParseIP(host)
	switch {
	case ip == nil:
		return nil, ErrParseBadAddress
	case bits == 8*net.IPv4len:
		if ip = ip.To4(); ip == nil {
			return nil, ErrParseBadAddress
		}
	case !containsColon(host):
		return nil, ErrParseBadAddress
	}

	m, err := parseMask(mask, bits)
	if err != nil {
		return nil, err
	}
	return &net.IPNet{IP: ip.Mask(m), Mask: m}, nil
}

// parseMask parses "", "/N" or, for IPv4, "/a.b.c.d".
func parseMask(s string, bits int) (net.IPMask, error) {
	if s == "" {
		return net.CIDRMask(bits, bits), nil
	}
	_, s, _ = take.Exact(s, 1)

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > bits {
			return nil, ErrParseBadAddress
		}
		return net.CIDRMask(n, bits), nil
	}

	if bits != 8*net.IPv4len {
		return nil, ErrParseBadAddress
	}
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return nil, ErrParseBadAddress
	}
	m := net.IPMask(ip)
	if _, b := m.Size(); b == 0 {
		return nil, ErrParseBadAddress
	}
	return m, nil
}

func parsePortSpec(s string) (uint16, uint16, error) {
	if s == "*" {
		return 1, 65535, nil
	}

	lo, hi, err := take.Until(s, "-")
	if err != nil {
		p, err := parsePort(s)
		return p, p, err
	}
	_, hi, _ = take.Exact(hi, 1)

	l, err := parsePort(lo)
	if err != nil {
		return 0, 0, err
	}
	h, err := parsePort(hi)
	if err != nil {
		return 0, 0, err
	}
	if h < l {
		return 0, 0, ErrParseBadPort
	}
	return l, h, nil
}

// parsePort parses a port number. Zero is accepted.
func parsePort(s string) (uint16, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, ErrParseBadPort
	}
	return uint16(p), nil
}

func containsColon(s string) bool {
	_, _, err := take.Until(s, ":")
	return err == nil
}
