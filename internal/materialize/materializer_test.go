package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesift/domain/grid"
	"tablesift/domain/table"
)

func TestMaterializeDropsEmptyRowsAndColumns(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"id", "note", "amount"},
		{"1", "", "10"},
		{"", "", ""},
		{"2", " ", "20"},
	})
	r := table.Region{Name: "s_table_1", HeaderRow: 0, DataStart: 1, DataEnd: 4}

	tbl, ok := Materialize(g, r, []string{"id", "note", "amount"})
	require.True(t, ok)
	assert.Equal(t, "s_table_1", tbl.Name)
	assert.Equal(t, []string{"id", "amount"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	for _, row := range tbl.Rows {
		assert.Len(t, row, 2)
	}
	assert.Equal(t, float64(1), tbl.Rows[0][0].AsNumber())
	assert.Equal(t, float64(20), tbl.Rows[1][1].AsNumber())
}

func TestMaterializeKeepsInteriorGaps(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"a", "b"},
		{"x", ""},
		{"", "y"},
	})
	r := table.Region{HeaderRow: 0, DataStart: 1, DataEnd: 3}

	tbl, ok := Materialize(g, r, []string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Equal(t, grid.KindEmpty, tbl.Rows[0][1].Kind())
	assert.Equal(t, grid.KindEmpty, tbl.Rows[1][0].Kind())
}

func TestMaterializeNoUsableData(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"a", "b"},
		{"", ""},
		{"c", "d"},
	})

	tests := []struct {
		name   string
		region table.Region
	}{
		{"no data rows", table.Region{HeaderRow: 0, DataStart: 1, DataEnd: 1}},
		{"only blank rows", table.Region{HeaderRow: 0, DataStart: 1, DataEnd: 2}},
		{"end past grid", table.Region{HeaderRow: 2, DataStart: 3, DataEnd: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, ok := Materialize(g, tt.region, []string{"a", "b"})
			assert.False(t, ok)
			assert.True(t, tbl.IsEmpty())
		})
	}
}

func TestMaterializeDoesNotAliasGrid(t *testing.T) {
	g := grid.FromStrings([][]string{{"a", "b"}, {"1", "2"}})
	tbl, ok := Materialize(g, table.Region{HeaderRow: 0, DataStart: 1, DataEnd: 2}, []string{"a", "b"})
	require.True(t, ok)

	tbl.Rows[0][0] = grid.Text("changed")
	assert.Equal(t, float64(1), g.Row(1)[0].AsNumber())
}
