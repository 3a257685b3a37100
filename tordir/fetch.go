package tordir

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcloughlin/take/check"
	"github.com/mmcloughlin/take/log"
	"github.com/pkg/errors"
)

// ErrFetchBadStatus is returned from a fetch operation when a non-200 HTTP
// response is received.
var ErrFetchBadStatus = errors.New("received non-200 on fetch")

// Reference: https://github.com/torproject/torspec/blob/4074b891e53e8df951fc596ac6758d74da290c60/dir-spec.txt#L3371-L3376
//
//	   The server's own descriptor is available at:
//	      http://<hostname>/tor/server/authority.z
//

// AuthorityDescriptorPath is where a directory server publishes its own
// descriptor.
const AuthorityDescriptorPath = "/tor/server/authority"

// FetchTimeout bounds the whole of a fetch, including reading the body.
const FetchTimeout = 30 * time.Second

var client = &http.Client{Timeout: FetchTimeout}

// Fetch downloads the document at path from the directory server at addr
// (in host:port format) and parses it.
func Fetch(addr, path string, l log.Logger) (*Document, error) {
	u := &url.URL{
		Scheme: "http",
		Host:   addr,
		Path:   path,
	}
	l = l.With("url", u.String())

	resp, err := client.Get(u.String())
	if err != nil {
		return nil, errors.Wrap(err, "fetch failed")
	}
	defer check.Close(l, resp.Body)

	if resp.StatusCode != http.StatusOK {
		l.With("status", resp.StatusCode).Warn("unexpected status")
		return nil, ErrFetchBadStatus
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	l.With("bytes", len(b)).Debug("fetched document")

	return Parse(b)
}

// FetchAuthorityDescriptor downloads and parses the server descriptor of the
// directory server at addr.
func FetchAuthorityDescriptor(addr string, l log.Logger) (*ServerDescriptor, error) {
	doc, err := Fetch(addr, AuthorityDescriptorPath, l)
	if err != nil {
		return nil, err
	}
	return NewServerDescriptorFromDocument(doc)
}
