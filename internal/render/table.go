package render

import (
	"strings"

	"github.com/hanpama/ods/internal/document"
	"github.com/mattn/go-runewidth"
)

// Table is a block of rows rendered as an ASCII grid. Rows may have
// different lengths; missing cells render blank.
type Table struct {
	Rows []document.Row

	// HeaderStyle, when set, wraps the padded text of each cell in the
	// first row. It must not change the display width.
	HeaderStyle func(string) string
}

// Layout is the computed geometry of a Table.
type Layout struct {
	table *Table

	cols       int
	colWidths  []int        // content width for each column
	rowHeights []int        // display lines per table row
	cellLines  [][][]string // cellLines[row][col] = cell text split by newlines
}

// Render renders the table to an ASCII string. An empty table renders as "".
func (t *Table) Render() string {
	if len(t.Rows) == 0 {
		return ""
	}
	layout := t.buildLayout()
	return layout.render()
}

func (t *Table) buildLayout() *Layout {
	cols := 0
	for _, row := range t.Rows {
		if row.Len() > cols {
			cols = row.Len()
		}
	}
	if cols == 0 {
		cols = 1
	}

	layout := &Layout{
		table:      t,
		cols:       cols,
		colWidths:  make([]int, cols),
		rowHeights: make([]int, len(t.Rows)),
		cellLines:  make([][][]string, len(t.Rows)),
	}

	for r, row := range t.Rows {
		layout.cellLines[r] = make([][]string, cols)
		for c := 0; c < cols; c++ {
			layout.cellLines[r][c] = strings.Split(row.Cell(c), "\n")
		}
	}

	layout.computeColWidths()
	layout.computeRowHeights()

	return layout
}

func (l *Layout) computeColWidths() {
	for i := range l.colWidths {
		l.colWidths[i] = 1
	}

	for _, row := range l.cellLines {
		for c, lines := range row {
			for _, line := range lines {
				if width := displayWidth(line); width > l.colWidths[c] {
					l.colWidths[c] = width
				}
			}
		}
	}
}

func (l *Layout) computeRowHeights() {
	for r, row := range l.cellLines {
		maxLines := 1
		for _, lines := range row {
			if len(lines) > maxLines {
				maxLines = len(lines)
			}
		}
		l.rowHeights[r] = maxLines
	}
}

func (l *Layout) render() string {
	var sb strings.Builder

	border := l.renderBorderLine()
	sb.WriteString(border)
	sb.WriteString("\n")

	for rowIdx := range l.cellLines {
		for displayRowIdx := 0; displayRowIdx < l.rowHeights[rowIdx]; displayRowIdx++ {
			sb.WriteString(l.renderContentLine(rowIdx, displayRowIdx))
			sb.WriteString("\n")
		}

		sb.WriteString(border)
		sb.WriteString("\n")
	}

	return sb.String()
}

func (l *Layout) renderBorderLine() string {
	var sb strings.Builder

	sb.WriteString("+")
	for colIdx := 0; colIdx < l.cols; colIdx++ {
		sb.WriteString(strings.Repeat("-", l.colWidths[colIdx]+2))
		sb.WriteString("+")
	}

	return sb.String()
}

// renderContentLine renders a single display line of a table row.
// displayRowIdx is the line index within that row (0-based).
func (l *Layout) renderContentLine(rowIdx int, displayRowIdx int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for colIdx := 0; colIdx < l.cols; colIdx++ {
		lines := l.cellLines[rowIdx][colIdx]

		var text string
		if displayRowIdx < len(lines) {
			text = lines[displayRowIdx]
		}

		padding := l.colWidths[colIdx] - displayWidth(text)
		if padding < 0 {
			padding = 0
		}
		cell := text + strings.Repeat(" ", padding)
		if rowIdx == 0 && l.table.HeaderStyle != nil {
			cell = l.table.HeaderStyle(cell)
		}

		sb.WriteString(" ")
		sb.WriteString(cell)
		sb.WriteString(" |")
	}

	return sb.String()
}

// displayWidth calculates the display width of a string using go-runewidth,
// so CJK text and combining marks line up in a terminal.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
