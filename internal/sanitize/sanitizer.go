// Package sanitize prepares tabular results for a boundary crossing
// (serialization, storage or display) by replacing non-finite numbers with the
// absent-value marker.
package sanitize

import (
	"tablesift/domain/grid"
	"tablesift/domain/table"
)

// Cell returns grid.Absent() for a NaN or ±Inf number and c otherwise
func Cell(c grid.Cell) grid.Cell {
	if c.IsNonFinite() {
		return grid.Absent()
	}
	return c
}

// Rows returns a copy of rows with every non-finite number replaced. It serves
// query results as well as clean tables.
func Rows(rows [][]grid.Cell) [][]grid.Cell {
	if rows == nil {
		return nil
	}
	out := make([][]grid.Cell, len(rows))
	for i, row := range rows {
		clean := make([]grid.Cell, len(row))
		for j, c := range row {
			clean[j] = Cell(c)
		}
		out[i] = clean
	}
	return out
}

// Table returns a sanitized copy of t. Applying it again is a no-op.
func Table(t table.CleanTable) table.CleanTable {
	return table.CleanTable{
		Name:    t.Name,
		Columns: append([]string(nil), t.Columns...),
		Rows:    Rows(t.Rows),
	}
}

// Tables sanitizes every table in order
func Tables(ts []table.CleanTable) []table.CleanTable {
	out := make([]table.CleanTable, len(ts))
	for i, t := range ts {
		out[i] = Table(t)
	}
	return out
}
