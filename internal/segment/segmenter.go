// Package segment partitions a grid into table regions with a single forward
// pass driven by row shape.
package segment

import (
	"fmt"
	"strings"

	"tablesift/domain/grid"
	"tablesift/domain/table"
	"tablesift/internal/ident"
)

type state int

const (
	stateNoOpenTable state = iota
	stateOpenTable
)

// Result is the outcome of one Segment call
type Result struct {
	// Regions are ordered by header row
	Regions []table.Region
	// Anonymous is the number of tables titled table_<n> in this call
	Anonymous int
	// DroppedTitles counts name rows discarded because no header followed them
	DroppedTitles int
	// Kinds holds the contextual label of every grid row. Rows consumed
	// into a region's data span are Data, the rest keep their Classify kind.
	Kinds []grid.RowKind
}

// scanner holds the per-call accumulator state of the state machine
type scanner struct {
	g         grid.Grid
	base      string
	state     state
	kinds     []grid.RowKind
	open      table.Region
	regions   []table.Region
	anonymous int
	dropped   int
}

// Segment scans g once and returns its table regions. base is the sheet or
// file identifier prefixed to every region name.
//
// Names are not made unique here; two regions titled alike in the same grid
// keep the same name and the caller decides how to disambiguate them.
//
// Known limitation: while a table is open, a multi-cell row is always data.
// Two header-led blocks stacked without a blank or title row between them are
// therefore read as one table.
func Segment(g grid.Grid, base string) Result {
	s := &scanner{g: g, base: base, kinds: make([]grid.RowKind, g.Len())}
	for i := range s.kinds {
		s.kinds[i] = grid.Classify(g.Row(i))
	}

	i := 0
	for i < g.Len() {
		i = s.step(i)
	}
	if s.state == stateOpenTable {
		s.emit()
	}

	return Result{Regions: s.regions, Anonymous: s.anonymous, DroppedTitles: s.dropped, Kinds: s.kinds}
}

// step consumes row i and returns the index of the next row to visit
func (s *scanner) step(i int) int {
	row := s.g.Row(i)
	kind := s.kinds[i]

	switch s.state {
	case stateNoOpenTable:
		switch kind {
		case grid.Blank:
			return i + 1
		case grid.Name:
			if h, ok := s.headerAfter(i); ok {
				s.begin(titleOf(row), h)
				return h + 1
			}
			s.dropped++
			return i + 1
		default:
			s.anonymous++
			s.begin(fmt.Sprintf("table_%d", s.anonymous), i)
			return i + 1
		}

	case stateOpenTable:
		switch kind {
		case grid.Blank:
			s.emit()
			return i + 1
		case grid.Name:
			if h, ok := s.headerAfter(i); ok {
				s.emit()
				s.begin(titleOf(row), h)
				return h + 1
			}
			// a lone value inside an open table is a sparse data row
			s.extend(i)
			return i + 1
		default:
			s.extend(i)
			return i + 1
		}
	}

	return i + 1
}

// headerAfter looks past the name row at i for the first multi-cell row in the
// same contiguous non-blank run.
func (s *scanner) headerAfter(i int) (int, bool) {
	for j := i + 1; j < s.g.Len(); j++ {
		switch s.kinds[j] {
		case grid.Blank:
			return 0, false
		case grid.Header:
			return j, true
		}
	}
	return 0, false
}

func (s *scanner) begin(title string, header int) {
	s.open = table.Region{
		Name:      ident.Join(s.base, title),
		HeaderRow: header,
		DataStart: header + 1,
		DataEnd:   header + 1,
	}
	s.state = stateOpenTable
}

func (s *scanner) extend(i int) {
	s.open.DataEnd = i + 1
	s.kinds[i] = grid.Data
}

func (s *scanner) emit() {
	s.regions = append(s.regions, s.open)
	s.open = table.Region{}
	s.state = stateNoOpenTable
}

// titleOf returns the single value of a name row
func titleOf(row grid.Row) string {
	for _, c := range row {
		if !c.IsEmpty() {
			return strings.TrimSpace(c.String())
		}
	}
	return ""
}
