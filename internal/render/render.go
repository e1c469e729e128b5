// Package render writes rows as plain-text grids.
package render

import (
	"fmt"
	"io"

	"github.com/hanpama/ods/internal/document"
)

// RenderText reads rows from scanner and writes them to w as ASCII grids of
// at most batch rows each, so only one batch is held in memory. The first
// row of the first grid is passed through headerStyle when it is not nil.
func RenderText(scanner document.RowScanner, w io.Writer, batch int, headerStyle func(string) string) error {
	if batch <= 0 {
		batch = 1
	}

	rows := make([]document.Row, 0, batch)
	first := true

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		t := &Table{Rows: rows}
		if first {
			t.HeaderStyle = headerStyle
			first = false
		}
		if _, err := fmt.Fprint(w, t.Render()); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
		rows = rows[:0]
		return nil
	}

	for {
		row, ok := scanner.Next()
		if !ok {
			return flush()
		}
		rows = append(rows, row)
		if len(rows) == batch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
