// Package materialize binds a region's data rows to its cleaned headers.
package materialize

import (
	"tablesift/domain/grid"
	"tablesift/domain/table"
)

// Materialize slices the region's data rows out of g, drops rows and then
// columns that are entirely empty, and returns the resulting table. ok is
// false when nothing usable is left; that is an empty result, not an error.
//
// columns must have one identifier per grid column; the header row of a
// padded grid always does.
func Materialize(g grid.Grid, r table.Region, columns []string) (t table.CleanTable, ok bool) {
	end := r.DataEnd
	if end > g.Len() {
		end = g.Len()
	}

	var kept []grid.Row
	for i := r.DataStart; i < end; i++ {
		row := g.Row(i)
		if row.IsBlank() {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return table.CleanTable{Name: r.Name}, false
	}

	var keep []int
	for j := range columns {
		for _, row := range kept {
			if !row[j].IsEmpty() {
				keep = append(keep, j)
				break
			}
		}
	}
	if len(keep) == 0 {
		return table.CleanTable{Name: r.Name}, false
	}

	t = table.CleanTable{
		Name:    r.Name,
		Columns: make([]string, len(keep)),
		Rows:    make([][]grid.Cell, len(kept)),
	}
	for k, j := range keep {
		t.Columns[k] = columns[j]
	}
	for i, row := range kept {
		out := make([]grid.Cell, len(keep))
		for k, j := range keep {
			out[k] = row[j]
		}
		t.Rows[i] = out
	}

	return t, true
}
