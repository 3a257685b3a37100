// Package httphead parses HTTP/1.x message heads, as spoken by Tor directory
// servers.
package httphead

import (
	"strconv"
	"strings"

	"github.com/mmcloughlin/take"
	"github.com/pkg/errors"
)

// Parsing errors.
var (
	ErrIncomplete         = errors.New("incomplete message head")
	ErrMalformedStartLine = errors.New("malformed start line")
	ErrUnsupportedVersion = errors.New("unsupported http version")
	ErrMalformedHeader    = errors.New("malformed header field")
	ErrBadStatusCode      = errors.New("bad status code")
)

const (
	crlf       = "\r\n"
	terminator = crlf + crlf
)

// Versions recognized in start lines.
const (
	HTTP10 = "HTTP/1.0"
	HTTP11 = "HTTP/1.1"
)

// Field is a single header field.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields.
type Header []Field

// Get returns the value of the first field with the given name, compared
// case-insensitively.
func (h Header) Get(name string) (string, bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// ContentLength returns the parsed Content-Length field, or -1 if absent.
func (h Header) ContentLength() (int, error) {
	v, ok := h.Get("Content-Length")
	if !ok {
		return -1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, ErrMalformedHeader
	}
	return n, nil
}

// Request is a parsed request head.
type Request struct {
	Method  string
	Target  string
	Version string
	Header  Header
}

// Response is a parsed response head.
type Response struct {
	Version    string
	StatusCode int
	Reason     string
	Header     Header
}

// SplitHead separates the message head from the body. The head excludes the
// blank line terminating it. Returns ErrIncomplete if the terminator has not
// been received yet.
func SplitHead(b []byte) (head, body []byte, err error) {
	head, body, err = take.UntilErr(b, terminator, ErrIncomplete)
	if err != nil {
		return nil, nil, err
	}
	_, body, _ = take.Exact(body, len(terminator))
	return head, body, nil
}

// ParseRequest parses a request head from the front of b, returning the body
// bytes that follow it.
func ParseRequest(b []byte) (*Request, []byte, error) {
	start, header, body, err := splitStartLine(b)
	if err != nil {
		return nil, nil, err
	}

	method, rest, err := take.UntilErr(start, " ", ErrMalformedStartLine)
	if err != nil {
		return nil, nil, err
	}
	_, rest, _ = take.Exact(rest, 1)

	target, rest, err := take.UntilErr(rest, " ", ErrMalformedStartLine)
	if err != nil {
		return nil, nil, err
	}
	_, rest, _ = take.Exact(rest, 1)

	version, rest, err := parseVersion(rest)
	if err != nil {
		return nil, nil, err
	}
	if len(method) == 0 || len(target) == 0 || len(rest) > 0 {
		return nil, nil, ErrMalformedStartLine
	}

	return &Request{
		Method:  string(method),
		Target:  string(target),
		Version: version,
		Header:  header,
	}, body, nil
}

// ParseResponse parses a response head from the front of b, returning the
// body bytes that follow it.
func ParseResponse(b []byte) (*Response, []byte, error) {
	start, header, body, err := splitStartLine(b)
	if err != nil {
		return nil, nil, err
	}

	version, rest, err := parseVersion(start)
	if err != nil {
		return nil, nil, err
	}
	_, rest, err = take.ExpectErr(rest, " ", ErrMalformedStartLine)
	if err != nil {
		return nil, nil, err
	}

	code, rest, err := take.ExactErr(rest, 3, ErrBadStatusCode)
	if err != nil {
		return nil, nil, err
	}
	status, err := strconv.Atoi(string(code))
	if err != nil || status < 100 {
		return nil, nil, ErrBadStatusCode
	}

	// The reason phrase may be empty, in which case so may the space before it.
	_, reason, ok := take.Maybe(rest, " ")
	if !ok && len(rest) > 0 {
		return nil, nil, ErrBadStatusCode
	}

	return &Response{
		Version:    version,
		StatusCode: status,
		Reason:     string(reason),
		Header:     header,
	}, body, nil
}

// parseVersion consumes one of the supported protocol versions. Expect leaves
// the input untouched on mismatch, so the alternatives are tried in turn.
func parseVersion(b []byte) (string, []byte, error) {
	for _, v := range []string{HTTP11, HTTP10} {
		if _, rest, err := take.Expect(b, v); err == nil {
			return v, rest, nil
		}
	}
	return "", b, ErrUnsupportedVersion
}

// splitStartLine splits the head of a message into start line and header
// fields.
func splitStartLine(b []byte) ([]byte, Header, []byte, error) {
	head, body, err := SplitHead(b)
	if err != nil {
		return nil, nil, nil, err
	}

	start, fields, err := take.Until(head, crlf)
	if err != nil {
		return head, Header{}, body, nil
	}
	_, fields, _ = take.Exact(fields, len(crlf))

	header, err := parseFields(fields)
	if err != nil {
		return nil, nil, nil, err
	}
	return start, header, body, nil
}

func parseFields(b []byte) (Header, error) {
	header := Header{}
	rest := b
	for len(rest) > 0 {
		line, r, err := take.Until(rest, crlf)
		if err != nil {
			line, r = rest, nil
		} else {
			_, r, _ = take.Exact(r, len(crlf))
		}
		rest = r

		name, value, err := take.UntilErr(line, ":", ErrMalformedHeader)
		if err != nil {
			return nil, err
		}
		if len(name) == 0 || strings.ContainsAny(string(name), " \t") {
			return nil, ErrMalformedHeader
		}
		_, value, _ = take.Exact(value, 1)

		header = append(header, Field{
			Name:  string(name),
			Value: strings.TrimSpace(string(value)),
		})
	}
	return header, nil
}
