package document

// Row is one table row as an ordered list of cell text values.
// Index i holds the text of the i-th cell element in document order.
type Row []string

// Len returns the number of cells in the row.
func (r Row) Len() int {
	return len(r)
}

// Cell returns the text at column col, or "" when the row is shorter.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// RowScanner is implemented by anything producing rows one at a time.
// The boolean is false once no further row exists.
type RowScanner interface {
	Next() (Row, bool)
}
