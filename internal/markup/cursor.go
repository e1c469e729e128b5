// Package markup provides a forward-only pull cursor over an XML payload.
//
// The cursor reports one event at a time (element start, element end, text)
// and never looks ahead. The only way back is Reopen, which restarts the
// stream from its first byte.
package markup

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Kind identifies the event the cursor is positioned on.
type Kind int

const (
	None Kind = iota
	Element
	EndElement
	Text
)

func (k Kind) String() string {
	switch k {
	case Element:
		return "element"
	case EndElement:
		return "end-element"
	case Text:
		return "text"
	}
	return "none"
}

// ErrNotReopenable is returned by Reopen on a cursor created from a plain reader.
var ErrNotReopenable = errors.New("cursor has no backing file")

// Cursor is a forward-only reader of XML events.
type Cursor struct {
	path   string
	closer io.Closer

	src *byteTracker
	dec *xml.Decoder

	kind    Kind
	name    xml.Name
	empty   bool
	text    string
	dropEnd bool

	done bool
	err  error
}

// Open opens the XML file at path. The cursor can be restarted with Reopen.
func Open(path string) (*Cursor, error) {
	c := &Cursor{path: path}
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

// New creates a cursor over r. It cannot be reopened.
func New(r io.Reader) *Cursor {
	c := &Cursor{}
	var closer io.Closer
	if rc, ok := r.(io.ReadCloser); ok {
		closer = rc
	}
	c.reset(r, closer)
	return c
}

func (c *Cursor) open() error {
	file, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("failed to open payload: %w", err)
	}
	c.reset(file, file)
	return nil
}

func (c *Cursor) reset(r io.Reader, closer io.Closer) {
	c.closer = closer
	c.src = newByteTracker(r)
	c.dec = xml.NewDecoder(c.src)
	c.dec.CharsetReader = c.charsetReader

	c.kind = None
	c.name = xml.Name{}
	c.empty = false
	c.text = ""
	c.dropEnd = false
	c.done = false
	c.err = nil
}

// charsetReader decodes payloads whose XML declaration names a non-UTF-8
// encoding. The decoder switches to the returned reader, so the tracker has
// to follow it for IsEmpty to keep working.
func (c *Cursor) charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	c.src = newByteTracker(enc.NewDecoder().Reader(input))
	return c.src, nil
}

// Read advances to the next event. It returns false at the end of the
// stream or on the first decode error; after that it keeps returning false.
func (c *Cursor) Read() bool {
	if c.done {
		return false
	}

	for {
		token, err := c.dec.Token()
		if err != nil {
			c.done = true
			c.kind = None
			c.name = xml.Name{}
			if err != io.EOF {
				c.err = fmt.Errorf("XML parse error: %w", err)
			}
			return false
		}

		switch t := token.(type) {
		case xml.StartElement:
			c.kind = Element
			c.name = t.Name
			c.text = ""
			c.empty = c.src.selfClosed()
			c.dropEnd = c.empty
			return true

		case xml.EndElement:
			// The decoder synthesizes an end for <a/>; an empty element is
			// reported as a single event.
			if c.dropEnd {
				c.dropEnd = false
				continue
			}
			c.kind = EndElement
			c.name = t.Name
			c.text = ""
			c.empty = false
			return true

		case xml.CharData:
			c.kind = Text
			c.name = xml.Name{}
			c.text = string(t)
			c.empty = false
			return true
		}
	}
}

// Kind returns the kind of the current event.
func (c *Cursor) Kind() Kind {
	return c.kind
}

// Name returns the element name of the current event. Space holds the
// namespace URI, or the raw prefix when the prefix was never declared.
func (c *Cursor) Name() xml.Name {
	return c.name
}

// IsEmpty reports whether the current element was written as <name/>.
func (c *Cursor) IsEmpty() bool {
	return c.empty
}

// Value returns the text of the current text event.
func (c *Cursor) Value() string {
	return c.text
}

// ReadString returns the concatenated text of the current element and all
// of its descendants. The cursor is left on the element's end event, so the
// subtree is consumed.
func (c *Cursor) ReadString() string {
	switch c.kind {
	case Text:
		return c.text
	case Element:
	default:
		return ""
	}
	if c.empty {
		return ""
	}

	var sb strings.Builder
	depth := 1
	for depth > 0 && c.Read() {
		switch c.kind {
		case Element:
			if !c.empty {
				depth++
			}
		case EndElement:
			depth--
		case Text:
			sb.WriteString(c.text)
		}
	}
	return sb.String()
}

// Err returns the decode error that stopped the cursor, or nil on a clean
// end of stream.
func (c *Cursor) Err() error {
	return c.err
}

// Reopen closes the underlying file and opens it again from the start.
func (c *Cursor) Reopen() error {
	if c.path == "" {
		return ErrNotReopenable
	}
	if err := c.Close(); err != nil {
		return err
	}
	return c.open()
}

// Close closes the underlying file. Further reads report end of stream.
func (c *Cursor) Close() error {
	c.done = true
	c.kind = None
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// byteTracker remembers the last two bytes handed to the decoder so a start
// element can be told apart from a self-closing one.
type byteTracker struct {
	r    *bufio.Reader
	prev byte
	last byte
}

func newByteTracker(r io.Reader) *byteTracker {
	return &byteTracker{r: bufio.NewReader(r)}
}

func (t *byteTracker) ReadByte() (byte, error) {
	b, err := t.r.ReadByte()
	if err == nil {
		t.prev, t.last = t.last, b
	}
	return b, err
}

func (t *byteTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	switch {
	case n >= 2:
		t.prev, t.last = p[n-2], p[n-1]
	case n == 1:
		t.prev, t.last = t.last, p[0]
	}
	return n, err
}

// selfClosed relies on encoding/xml pulling bytes through ReadByte and
// returning a StartElement right after consuming its '>', with no read-ahead.
// TestCursorEvents and TestCharsetDeclaration break if that changes.
func (t *byteTracker) selfClosed() bool {
	return t.prev == '/' && t.last == '>'
}
