package tordir

import (
	"encoding/pem"
	"strings"

	"github.com/mmcloughlin/take"
	"github.com/pkg/errors"
)

// Parsing errors.
var (
	ErrParseBadPEMBlock      = errors.New("bad pem block")
	ErrParseUnrecognizedData = errors.New("document contained unrecognized data")
	ErrParseBadKeyword       = errors.New("expected keyword")
)

// Document represents a Tor directory document.
type Document struct {
	items []*Item
}

// AddItem adds the item to the Document.
func (d *Document) AddItem(item *Item) {
	d.items = append(d.items, item)
}

// Items returns the items of the document in order.
func (d Document) Items() []*Item {
	return d.items
}

// Lookup returns the first item with the given keyword.
func (d Document) Lookup(keyword string) (*Item, bool) {
	for _, item := range d.items {
		if item.Keyword == keyword {
			return item, true
		}
	}
	return nil, false
}

// Encode converts the document to bytes.
func (d Document) Encode() []byte {
	doc := []byte{}
	for _, item := range d.items {
		doc = append(doc, item.Encode()...)
	}
	return doc
}

// Item is an entry in a Tor directory document.
type Item struct {
	Keyword    string
	Whitespace string
	Arguments  []string
	Object     *pem.Block
}

// NewItemWithObject constructs an item with the given arguments with an
// associated object.
func NewItemWithObject(keyword string, args []string, obj *pem.Block) *Item {
	return &Item{
		Keyword:    keyword,
		Whitespace: " ",
		Arguments:  args,
		Object:     obj,
	}
}

// NewItem constructs an item without an object.
func NewItem(keyword string, args []string) *Item {
	return NewItemWithObject(keyword, args, nil)
}

// NewItemKeywordOnly constructs an item that only has a keyword.
func NewItemKeywordOnly(keyword string) *Item {
	return NewItem(keyword, []string{})
}

// Line returns the arguments joined back into the text following the keyword.
func (it Item) Line() string {
	return strings.Join(it.Arguments, " ")
}

// Encode converts the item to bytes.
func (it Item) Encode() []byte {
	s := it.Keyword
	if len(it.Arguments) > 0 {
		s += it.Whitespace + it.Line()
	}
	s += "\n"
	if it.Object != nil {
		s += string(pem.EncodeToMemory(it.Object))
	}
	return []byte(s)
}

// Reference: https://github.com/torproject/torspec/blob/4074b891e53e8df951fc596ac6758d74da290c60/dir-spec.txt#L228-L250
//
//	NL = The ascii LF character (hex value 0x0a).
//	Document ::= (Item | NL)+
//	Item ::= KeywordLine Object*
//	KeywordLine ::= Keyword NL | Keyword WS ArgumentChar+ NL
//	Keyword = KeywordChar+
//	KeywordChar ::= 'A' ... 'Z' | 'a' ... 'z' | '0' ... '9' | '-'
//	ArgumentChar ::= any printing ASCII character except NL.
//	WS = (SP | TAB)+
//	Object ::= BeginLine Base64-encoded-data EndLine
//	BeginLine ::= "-----BEGIN " Keyword "-----" NL
//	EndLine ::= "-----END " Keyword "-----" NL
//

const (
	beginPrefix = "-----BEGIN "
	endPrefix   = "-----END "
)

// Parse parses a Tor directory document. Blank lines between items are
// accepted but not preserved.
func Parse(b []byte) (*Document, error) {
	doc := &Document{}
	rest := b
	for len(rest) > 0 {
		if _, r, ok := take.Maybe(rest, "\n"); ok {
			rest = r
			continue
		}

		item, r, err := parseItem(rest)
		if err != nil {
			return nil, err
		}
		doc.AddItem(item)
		rest = r
	}
	return doc, nil
}

// parseItem parses a keyword line and its optional object from the front of
// b.
func parseItem(b []byte) (*Item, []byte, error) {
	line, rest, err := take.UntilErr(b, "\n", ErrParseUnrecognizedData)
	if err != nil {
		return nil, nil, err
	}

	// Scan the keyword over the line including its newline, so that a
	// keyword-only line can match in full.
	withNL, rest, _ := take.Exact(b, len(line)+1)
	keyword, args, err := take.LargestErr(withNL, isKeyword, 1, ErrParseBadKeyword)
	if err != nil {
		return nil, nil, err
	}
	args = args[:len(args)-1]

	item := &Item{
		Keyword:   string(keyword),
		Arguments: []string{},
	}

	if len(args) > 0 {
		ws, argLine, err := take.LargestErr(args, isBlank, 1, ErrParseUnrecognizedData)
		if err != nil {
			return nil, nil, err
		}
		if !isPrintable(argLine) {
			return nil, nil, ErrParseUnrecognizedData
		}
		item.Whitespace = string(ws)
		item.Arguments = strings.Split(string(argLine), " ")
	}

	item.Object, rest, err = parseObject(rest)
	if err != nil {
		return nil, nil, err
	}

	return item, rest, nil
}

// parseObject parses a PEM object from the front of b, if there is one.
func parseObject(b []byte) (*pem.Block, []byte, error) {
	if _, _, ok := take.Maybe(b, beginPrefix); !ok {
		return nil, b, nil
	}

	_, end, err := take.UntilErr(b, endPrefix, ErrParseBadPEMBlock)
	if err != nil {
		return nil, nil, err
	}
	_, nl, err := take.UntilErr(end, "\n", ErrParseBadPEMBlock)
	if err != nil {
		return nil, nil, err
	}
	obj, rest, _ := take.Exact(b, len(b)-len(nl)+1)

	block, extra := pem.Decode(obj)
	if block == nil || len(extra) > 0 {
		return nil, nil, ErrParseBadPEMBlock
	}

	return block, rest, nil
}

func isKeyword(b []byte) bool {
	for _, c := range b {
		if !isKeywordChar(c) {
			return false
		}
	}
	return true
}

func isKeywordChar(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || c == '-'
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
