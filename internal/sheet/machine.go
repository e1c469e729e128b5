// Package sheet assembles rows of cell text from a stream of OpenDocument
// markup events.
package sheet

import (
	"encoding/xml"

	"github.com/hanpama/ods/internal/document"
	"github.com/hanpama/ods/internal/markup"
)

const (
	tableNS = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	textNS  = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
)

// Source is the event stream consumed by Machine. *markup.Cursor implements it.
type Source interface {
	Read() bool
	Kind() markup.Kind
	Name() xml.Name
	IsEmpty() bool
	ReadString() string
	Err() error
}

type state int

const (
	seekingTable state = iota
	seekingRow
	inRow
	done
)

// Machine walks the first table of a content document and returns its rows
// one per Next call. It keeps no parse tree: the state and the source
// position are all it knows.
type Machine struct {
	src   Source
	state state

	// emptyRow is set when the row just entered was written as
	// <table:table-row/> and so has no end event.
	emptyRow bool
}

// New creates a Machine positioned before the first table of src.
func New(src Source) *Machine {
	return &Machine{src: src}
}

// Reset discards the current position and starts over on src.
func (m *Machine) Reset(src Source) {
	m.src = src
	m.state = seekingTable
	m.emptyRow = false
}

// Done reports whether the walk has finished for this pass.
func (m *Machine) Done() bool {
	return m.state == done
}

// Err returns the decode error that ended the walk, if any.
func (m *Machine) Err() error {
	if m.src == nil {
		return nil
	}
	return m.src.Err()
}

// Next returns the next row of the first table. The boolean is false once
// the table has closed or the stream has ended; every later call returns
// false as well. A row without cells is returned as an empty, non-nil Row.
func (m *Machine) Next() (document.Row, bool) {
	if m.src == nil {
		m.state = done
	}

	if m.state == seekingTable {
		m.seekTable()
	}
	if m.state == seekingRow {
		m.seekRow()
	}
	if m.state == inRow {
		return m.readRow()
	}
	return nil, false
}

func (m *Machine) seekTable() {
	for m.src.Read() {
		if m.src.Kind() == markup.Element && isTable(m.src.Name(), "table") {
			m.state = seekingRow
			if m.src.IsEmpty() {
				m.state = done
			}
			return
		}
	}
	m.state = done
}

func (m *Machine) seekRow() {
	for m.src.Read() {
		name := m.src.Name()
		switch {
		case isTable(name, "table"):
			// The first table is over; later tables are never read.
			m.state = done
			return
		case isTable(name, "table-row") && m.src.Kind() == markup.Element:
			m.state = inRow
			m.emptyRow = m.src.IsEmpty()
			return
		}
	}
	m.state = done
}

// readRow collects cells until the row closes. A cell's value is the text of
// the last text:p it contains; earlier paragraphs are overwritten, not joined.
func (m *Machine) readRow() (document.Row, bool) {
	row := document.Row{}
	if m.emptyRow {
		m.emptyRow = false
		m.state = seekingRow
		return row, true
	}

	var last string
	for m.src.Read() {
		name := m.src.Name()
		kind := m.src.Kind()

		switch {
		case isTable(name, "table-cell"):
			switch {
			case kind == markup.EndElement:
				row = append(row, last)
			case m.src.IsEmpty():
				last = ""
				row = append(row, "")
			default:
				last = ""
			}

		case isText(name, "p") && kind == markup.Element:
			last = m.src.ReadString()

		case isTable(name, "table-row"):
			m.state = seekingRow
			return row, true
		}
	}

	// Stream ended inside the row; the partial row is dropped.
	m.state = done
	return nil, false
}

func isTable(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == tableNS || name.Space == "table")
}

func isText(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == textNS || name.Space == "text")
}
