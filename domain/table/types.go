// Package table defines the regions found in a grid and the clean tables built from them.
package table

import (
	"encoding/json"

	"tablesift/domain/grid"
)

// Region is a contiguous span of grid rows forming one logical table:
// a header row followed by the data rows [DataStart, DataEnd).
type Region struct {
	Name      string `json:"name"`
	HeaderRow int    `json:"header_row"`
	DataStart int    `json:"data_start"`
	DataEnd   int    `json:"data_end"`
}

// Len returns the number of data rows spanned by the region
func (r Region) Len() int { return r.DataEnd - r.DataStart }

// Valid reports whether HeaderRow < DataStart <= DataEnd
func (r Region) Valid() bool {
	return r.HeaderRow >= 0 && r.HeaderRow < r.DataStart && r.DataStart <= r.DataEnd
}

// CleanTable is a materialized table: unique column identifiers and rows
// matching their arity, with no all-empty row or column.
type CleanTable struct {
	Name    string        `json:"name"`
	Columns []string      `json:"columns"`
	Rows    [][]grid.Cell `json:"rows"`
}

// RowCount returns the number of rows
func (t CleanTable) RowCount() int { return len(t.Rows) }

// ColumnCount returns the number of columns
func (t CleanTable) ColumnCount() int { return len(t.Columns) }

// IsEmpty reports whether the table has no rows or no columns
func (t CleanTable) IsEmpty() bool { return len(t.Rows) == 0 || len(t.Columns) == 0 }

// Column returns the cells of column j in row order
func (t CleanTable) Column(j int) []grid.Cell {
	col := make([]grid.Cell, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	return col
}

// Records returns the rows keyed by column identifier, the shape the upload
// response and query results use.
func (t CleanTable) Records() []map[string]grid.Cell {
	out := make([]map[string]grid.Cell, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]grid.Cell, len(t.Columns))
		for j, name := range t.Columns {
			rec[name] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Summary is the compact description of a stored table
type Summary struct {
	Name        string   `json:"name"`
	Columns     []string `json:"columns"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
}

// Summarize describes the table without its data
func (t CleanTable) Summarize() Summary {
	return Summary{
		Name:        t.Name,
		Columns:     append([]string(nil), t.Columns...),
		RowCount:    t.RowCount(),
		ColumnCount: t.ColumnCount(),
	}
}

// MarshalJSON keeps rows as arrays of cells and never emits a null column list
func (t CleanTable) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name    string        `json:"name"`
		Columns []string      `json:"columns"`
		Rows    [][]grid.Cell `json:"rows"`
	}
	w := wire{Name: t.Name, Columns: t.Columns, Rows: t.Rows}
	if w.Columns == nil {
		w.Columns = []string{}
	}
	if w.Rows == nil {
		w.Rows = [][]grid.Cell{}
	}
	return json.Marshal(w)
}
