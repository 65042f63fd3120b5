// Package testkit generates synthetic multi-table sheets with a known layout.
package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"tablesift/domain/grid"
)

// SheetGeneratorConfig configures the stacked-table sheet generator
type SheetGeneratorConfig struct {
	Tables    int     `json:"tables"`
	MaxRows   int     `json:"max_rows"`
	MaxCols   int     `json:"max_cols"`
	Width     int     `json:"width"`
	TitleRate float64 `json:"title_rate"`
	Seed      int64   `json:"seed"`
}

// DefaultSheetConfig returns sensible defaults for sheet generation
func DefaultSheetConfig() SheetGeneratorConfig {
	return SheetGeneratorConfig{
		Tables:    4,
		MaxRows:   6,
		MaxCols:   5,
		Width:     8,
		TitleRate: 0.6,
		Seed:      42,
	}
}

// ExpectedTable is what extraction must recover for one generated block
type ExpectedTable struct {
	Title   string
	Columns []string
	Rows    int
}

// SheetGenerator lays out header-led tables separated by blank rows. Every
// data row has at least two values so no data row reads as a title.
type SheetGenerator struct {
	config SheetGeneratorConfig
	rng    *rand.Rand
}

// NewSheetGenerator creates a new sheet generator
func NewSheetGenerator(config SheetGeneratorConfig) *SheetGenerator {
	if config.MaxCols < 2 {
		config.MaxCols = 2
	}
	if config.Width < config.MaxCols {
		config.Width = config.MaxCols
	}
	if config.MaxRows < 1 {
		config.MaxRows = 1
	}
	return &SheetGenerator{config: config, rng: rand.New(rand.NewSource(config.Seed))}
}

// Generate returns the sheet and its expected tables in order. Untitled tables
// get the table_<n> title extraction assigns them.
func (g *SheetGenerator) Generate() (grid.Grid, []ExpectedTable) {
	var rows [][]grid.Cell
	var expected []ExpectedTable
	anonymous := 0

	for t := 0; t < g.config.Tables; t++ {
		for blanks := 1 + g.rng.Intn(2); blanks > 0; blanks-- {
			rows = append(rows, nil)
		}

		offset := g.rng.Intn(g.config.Width - g.config.MaxCols + 1)
		cols := 2 + g.rng.Intn(g.config.MaxCols-1)

		exp := ExpectedTable{Rows: 1 + g.rng.Intn(g.config.MaxRows)}
		if g.rng.Float64() < g.config.TitleRate {
			exp.Title = fmt.Sprintf("Block%d", t+1)
			rows = append(rows, g.place(offset, []grid.Cell{grid.Text(exp.Title)}))
		} else {
			anonymous++
			exp.Title = "table_" + strconv.Itoa(anonymous)
		}

		header := make([]grid.Cell, cols)
		for j := range header {
			name := fmt.Sprintf("col%d", j+1)
			header[j] = grid.Text(name)
			exp.Columns = append(exp.Columns, name)
		}
		rows = append(rows, g.place(offset, header))

		for r := 0; r < exp.Rows; r++ {
			rows = append(rows, g.place(offset, g.dataRow(cols, r == 0)))
		}
		expected = append(expected, exp)
	}

	return grid.New(rows), expected
}

// dataRow fills every cell, leaving at most one gap outside the first two
// columns. The first row of a block is always full so no column ends up empty.
func (g *SheetGenerator) dataRow(cols int, full bool) []grid.Cell {
	row := make([]grid.Cell, cols)
	for j := range row {
		if g.rng.Intn(2) == 0 {
			row[j] = grid.Number(float64(g.rng.Intn(1000)))
		} else {
			row[j] = grid.Text("v" + strconv.Itoa(g.rng.Intn(100)))
		}
	}
	if !full && cols > 2 && g.rng.Intn(3) == 0 {
		row[2+g.rng.Intn(cols-2)] = grid.Empty()
	}
	return row
}

func (g *SheetGenerator) place(offset int, cells []grid.Cell) []grid.Cell {
	row := make([]grid.Cell, offset+len(cells))
	copy(row[offset:], cells)
	return row
}
