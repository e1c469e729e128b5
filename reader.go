package ods

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/hanpama/ods/internal/markup"
	"github.com/hanpama/ods/internal/odf"
	"github.com/hanpama/ods/internal/sheet"
)

// Reader iterates over the rows of the first table of a spreadsheet.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	cfg     Config
	logger  *slog.Logger
	payload *odf.Payload
	cursor  *markup.Cursor
	machine *sheet.Machine

	index   int
	current Row
	valid   bool
	primed  bool
	err     error
	closed  bool
}

// Rewind moves the reader back to the first row. If any row has been read,
// the content document is closed and reopened, which rescans it from the
// first byte. A Reader that has not advanced is left as it is.
func (r *Reader) Rewind() error {
	if r.closed {
		return ErrClosed
	}

	r.index = 0
	if !r.primed {
		return nil
	}
	r.primed = false
	r.current = nil

	if r.cursor == nil {
		return nil
	}

	if err := r.cursor.Reopen(); err != nil {
		r.machine.Reset(nil)
		r.valid = false
		r.err = err
		return fmt.Errorf("failed to rewind: %w", err)
	}

	r.machine.Reset(r.cursor)
	r.valid = true
	r.err = nil
	return nil
}

// Next advances to the next row and returns it. The boolean is false when
// the table or the document has ended; malformed markup ends the iteration
// the same way, with the cause available from Err.
func (r *Reader) Next() (Row, bool) {
	r.index++
	r.primed = true

	var row Row
	ok := false
	if !r.closed && r.machine != nil && !r.machine.Done() {
		row, ok = r.machine.Next()
	}

	if !ok {
		row = Row{}
		if r.machine != nil && r.err == nil {
			if err := r.machine.Err(); err != nil {
				r.err = err
				r.logger.Debug("content document ended early", "position", r.index, "error", err)
			}
		}
	}

	r.current = row
	r.valid = ok
	if !ok {
		return nil, false
	}
	return row, true
}

// Current returns the row produced by the last Next. Called before any
// Next, it reads the first row without moving Position.
func (r *Reader) Current() Row {
	if !r.primed {
		r.Next()
		r.index--
	}
	return r.current
}

// Position returns the number of Next calls since the last Rewind.
func (r *Reader) Position() int {
	return r.index
}

// HasMore reports whether the last Next produced a row. Before the first
// Next it is true whenever the archive had a content document.
func (r *Reader) HasMore() bool {
	return r.valid
}

// Count returns Position()+1.
//
// Count is not the number of rows in the sheet, which cannot be known
// without reading to the end. It only grows as rows are consumed.
func (r *Reader) Count() int {
	return r.index + 1
}

// Err returns the markup or rewind error that ended iteration early, if any.
func (r *Reader) Err() error {
	return r.err
}

// Rows rewinds the reader and yields each remaining row with its position.
func (r *Reader) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		if err := r.Rewind(); err != nil {
			return
		}
		for {
			row, ok := r.Next()
			if !ok || !yield(r.index, row) {
				return
			}
		}
	}
}

// Close closes the content document and removes the staging directory.
// Calling Close more than once is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.valid = false

	var errs []error
	if r.cursor != nil {
		if err := r.cursor.Close(); err != nil {
			errs = append(errs, err)
		}
		r.cursor = nil
	}
	if r.payload != nil {
		if err := r.payload.Remove(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
