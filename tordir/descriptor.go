package tordir

import (
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcloughlin/take"
	"github.com/mmcloughlin/take/protover"
	"github.com/mmcloughlin/take/torconfig"
	"github.com/mmcloughlin/take/torexitpolicy"
	"github.com/pkg/errors"
)

const (
	routerKeyword          = "router"
	bandwidthKeyword       = "bandwidth"
	publishedKeyword       = "published"
	onionKeyKeyword        = "onion-key"
	signingKeyKeyword      = "signing-key"
	fingerprintKeyword     = "fingerprint"
	routerSignatureKeyword = "router-signature"
	acceptKeyword          = "accept"
	rejectKeyword          = "reject"
	platformKeyword        = "platform"
	protoKeyword           = "proto"
	contactKeyword         = "contact"
)

var requiredKeywords = []string{
	routerKeyword,
	bandwidthKeyword,
	publishedKeyword,
	onionKeyKeyword,
	signingKeyKeyword,
}

// Potential errors when reading a server descriptor.
var (
	ErrServerDescriptorNotRouter    = errors.New("descriptor must begin with router line")
	ErrServerDescriptorBadNickname  = errors.New("invalid nickname")
	ErrServerDescriptorNotIPv4      = errors.New("require ipv4 address")
	ErrServerDescriptorNoExitPolicy = errors.New("missing exit policy")
	ErrServerDescriptorBadArguments = errors.New("unexpected arguments")
	ErrServerDescriptorMissingKey   = errors.New("missing key object")
)

// ServerDescriptorMissingFieldError indicates that a required field is
// missing from a server descriptor.
type ServerDescriptorMissingFieldError string

func (e ServerDescriptorMissingFieldError) Error() string {
	return fmt.Sprintf("missing field '%s'", string(e))
}

// Bandwidth is the bandwidth advertised by a router, in bytes per second.
type Bandwidth struct {
	Average  int
	Burst    int
	Observed int
}

// ServerDescriptor describes a router, as published to the directory
// authorities.
type ServerDescriptor struct {
	Nickname    string
	Address     net.IP
	ORPort      uint16
	SOCKSPort   uint16
	DirPort     uint16
	Bandwidth   Bandwidth
	Published   time.Time
	Platform    *torconfig.Platform
	Protocols   protover.SupportedProtocols
	ExitPolicy  *torexitpolicy.Policy
	Contact     string
	Fingerprint []byte
	OnionKey    *pem.Block
	SigningKey  *pem.Block
	Signature   *pem.Block
}

// Reference: https://github.com/torproject/torspec/blob/master/dir-spec.txt#L1180-L1181
//
//	   nickname ::= between 1 and 19 alphanumeric characters ([A-Za-z0-9]),
//	      case-insensitive.
//
var nicknameRx = regexp.MustCompile(`^[[:alnum:]]{1,19}$`)

// ParseServerDescriptor parses a server descriptor document.
func ParseServerDescriptor(b []byte) (*ServerDescriptor, error) {
	doc, err := Parse(b)
	if err != nil {
		return nil, err
	}
	return NewServerDescriptorFromDocument(doc)
}

// NewServerDescriptorFromDocument interprets the items of doc as a server
// descriptor.
func NewServerDescriptorFromDocument(doc *Document) (*ServerDescriptor, error) {
	items := doc.Items()
	if len(items) == 0 || items[0].Keyword != routerKeyword {
		return nil, ErrServerDescriptorNotRouter
	}

	for _, keyword := range requiredKeywords {
		if _, ok := doc.Lookup(keyword); !ok {
			return nil, ServerDescriptorMissingFieldError(keyword)
		}
	}

	d := &ServerDescriptor{
		ExitPolicy: torexitpolicy.NewPolicyWithDefault(torexitpolicy.Accept),
	}
	hasPolicy := false
	for _, item := range items {
		var err error
		switch item.Keyword {
		case routerKeyword:
			err = d.parseRouter(item)
		case bandwidthKeyword:
			err = d.parseBandwidth(item)
		case publishedKeyword:
			d.Published, err = time.Parse("2006-01-02 15:04:05", item.Line())
		case platformKeyword:
			var p torconfig.Platform
			p, err = torconfig.ParsePlatform(item.Line())
			d.Platform = &p
		case protoKeyword:
			d.Protocols, err = protover.Parse(item.Line())
		case contactKeyword:
			d.Contact = item.Line()
		case fingerprintKeyword:
			d.Fingerprint, err = parseFingerprint(item)
		case onionKeyKeyword:
			d.OnionKey, err = requireObject(item)
		case signingKeyKeyword:
			d.SigningKey, err = requireObject(item)
		case routerSignatureKeyword:
			d.Signature, err = requireObject(item)
		case acceptKeyword, rejectKeyword:
			var rule torexitpolicy.Rule
			rule, err = torexitpolicy.ParseRule(item.Keyword + " " + item.Line())
			d.ExitPolicy.AddRule(rule)
			hasPolicy = true
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s line", item.Keyword)
		}
	}

	if !hasPolicy {
		return nil, ErrServerDescriptorNoExitPolicy
	}

	return d, nil
}

// parseRouter parses the router line.
//
// Reference: https://github.com/torproject/torspec/blob/master/dir-spec.txt#L379-L394
//
//	     "router" nickname address ORPort SOCKSPort DirPort NL
//
//	       [At start, exactly once.]
//
func (d *ServerDescriptor) parseRouter(item *Item) error {
	if len(item.Arguments) != 5 {
		return ErrServerDescriptorBadArguments
	}

	d.Nickname = item.Arguments[0]
	if !nicknameRx.MatchString(d.Nickname) {
		return ErrServerDescriptorBadNickname
	}

	d.Address = net.ParseIP(item.Arguments[1]).To4()
	if d.Address == nil {
		return ErrServerDescriptorNotIPv4
	}

	ports := []*uint16{&d.ORPort, &d.SOCKSPort, &d.DirPort}
	for i, p := range ports {
		n, err := strconv.ParseUint(item.Arguments[2+i], 10, 16)
		if err != nil {
			return err
		}
		*p = uint16(n)
	}
	return nil
}

// parseBandwidth parses the bandwidth line.
//
// Reference: https://github.com/torproject/torspec/blob/master/dir-spec.txt#L419-L430
//
//	    "bandwidth" bandwidth-avg bandwidth-burst bandwidth-observed NL
//
//	       [Exactly once]
//
func (d *ServerDescriptor) parseBandwidth(item *Item) error {
	if len(item.Arguments) != 3 {
		return ErrServerDescriptorBadArguments
	}
	values := []*int{&d.Bandwidth.Average, &d.Bandwidth.Burst, &d.Bandwidth.Observed}
	for i, v := range values {
		n, err := strconv.Atoi(item.Arguments[i])
		if err != nil {
			return err
		}
		*v = n
	}
	return nil
}

// parseFingerprint decodes the fingerprint line: hex with a single space
// after every 4 characters.
func parseFingerprint(item *Item) ([]byte, error) {
	if len(item.Arguments) != 10 {
		return nil, ErrServerDescriptorBadArguments
	}
	for _, chunk := range item.Arguments {
		if _, rest, err := take.Exact(chunk, 4); err != nil || len(rest) > 0 {
			return nil, ErrServerDescriptorBadArguments
		}
	}
	return hex.DecodeString(strings.Join(item.Arguments, ""))
}

func requireObject(item *Item) (*pem.Block, error) {
	if item.Object == nil {
		return nil, ErrServerDescriptorMissingKey
	}
	return item.Object, nil
}
