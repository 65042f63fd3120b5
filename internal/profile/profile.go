// Package profile summarizes the columns of an extracted table.
package profile

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"tablesift/domain/grid"
	"tablesift/domain/table"
)

// ColumnKind classifies a column by the cells it holds
type ColumnKind string

const (
	Numeric     ColumnKind = "numeric"
	Categorical ColumnKind = "categorical"
)

// Profile is the data overview of one table
type Profile struct {
	Name               string          `json:"name"`
	RowCount           int             `json:"row_count"`
	ColumnCount        int             `json:"column_count"`
	NumericColumns     []string        `json:"numeric_columns"`
	CategoricalColumns []string        `json:"categorical_columns"`
	Columns            []ColumnProfile `json:"columns"`
}

// ColumnProfile describes one column. Summary is nil for categorical columns.
type ColumnProfile struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Unique  int        `json:"unique"`
	Missing int        `json:"missing"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Summary holds descriptive statistics of a numeric column
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Table profiles every column of t
func Table(t table.CleanTable) Profile {
	p := Profile{
		Name:               t.Name,
		RowCount:           t.RowCount(),
		ColumnCount:        t.ColumnCount(),
		NumericColumns:     []string{},
		CategoricalColumns: []string{},
		Columns:            make([]ColumnProfile, 0, t.ColumnCount()),
	}

	for j, name := range t.Columns {
		cp := Column(name, t.Column(j))
		if cp.Kind == Numeric {
			p.NumericColumns = append(p.NumericColumns, name)
		} else {
			p.CategoricalColumns = append(p.CategoricalColumns, name)
		}
		p.Columns = append(p.Columns, cp)
	}
	return p
}

// Column profiles a single column. A column is numeric when it has at least
// one value and every value is a finite number.
func Column(name string, cells []grid.Cell) ColumnProfile {
	cp := ColumnProfile{Name: name, Kind: Numeric}
	unique := make(map[string]struct{})
	var data []float64

	for _, c := range cells {
		if c.IsEmpty() || c.IsNonFinite() {
			cp.Missing++
			continue
		}
		unique[c.String()] = struct{}{}
		if c.Kind() == grid.KindNumber {
			data = append(data, c.AsNumber())
		} else {
			cp.Kind = Categorical
		}
	}
	cp.Unique = len(unique)

	if len(unique) == 0 {
		cp.Kind = Categorical
	}
	if cp.Kind == Numeric {
		cp.Summary = summarize(data)
	}
	return cp
}

func summarize(data []float64) *Summary {
	s := &Summary{Count: len(data)}

	// stats only errors on empty input, which Column rules out
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.Median, _ = stats.Median(data)

	if len(data) < 2 {
		s.Mean = data[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}
