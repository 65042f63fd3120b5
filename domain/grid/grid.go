// Package grid models the raw, header-less cell grid loaded from one sheet or file.
package grid

// Row is an ordered sequence of cells with the grid's fixed width
type Row []Cell

// Occupancy counts the non-empty cells in the row
func (r Row) Occupancy() int {
	n := 0
	for _, c := range r {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}

// IsBlank reports whether every cell in the row is empty
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Grid is an immutable rectangular array of cells. Rows returned by Row must
// be treated as read-only.
type Grid struct {
	rows  []Row
	width int
}

// New builds a grid from ragged rows, right-padding short rows with empty cells.
// The input slices are copied.
func New(rows [][]Cell) Grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	padded := make([]Row, len(rows))
	for i, r := range rows {
		row := make(Row, width)
		copy(row, r)
		padded[i] = row
	}

	return Grid{rows: padded, width: width}
}

// FromStrings builds a grid from loader text, parsing each cell with Parse
func FromStrings(rows [][]string) Grid {
	cells := make([][]Cell, len(rows))
	for i, r := range rows {
		cells[i] = make([]Cell, len(r))
		for j, s := range r {
			cells[i][j] = Parse(s)
		}
	}
	return New(cells)
}

// Len returns the number of rows
func (g Grid) Len() int { return len(g.rows) }

// Width returns the number of columns
func (g Grid) Width() int { return g.width }

// Row returns row i
func (g Grid) Row(i int) Row { return g.rows[i] }

// IsBlank reports whether the grid has no non-empty cell
func (g Grid) IsBlank() bool {
	for _, r := range g.rows {
		if !r.IsBlank() {
			return false
		}
	}
	return true
}
