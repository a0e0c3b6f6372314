// Package dataset holds the raw tabular form collaborators hand to the pipeline.
package dataset

// Table is a header plus string rows in stable input order.
// Rows shorter than the header read as empty for the missing cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Missing returns the requested columns absent from the header, in request order.
func (t *Table) Missing(columns ...string) []string {
	var missing []string
	for _, c := range columns {
		if t.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	return missing
}

// Cell returns row[col], or "" when col is negative or out of range.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }
