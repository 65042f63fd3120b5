package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tablesift/domain/core"
	"tablesift/domain/grid"
	"tablesift/internal/errors"
)

func workbookBytes(t *testing.T, build func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func setRows(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
}

func TestDetectFileType(t *testing.T) {
	ft, err := DetectFileType("Report.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FileTypeXLSX, ft)

	ft, err = DetectFileType("data.csv")
	require.NoError(t, err)
	assert.Equal(t, FileTypeCSV, ft)

	_, err = DetectFileType("notes.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedFile, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrUnsupportedFile)
}

func TestLoadXLSXAllSheets(t *testing.T) {
	data := workbookBytes(t, func(f *excelize.File) {
		setRows(t, f, "Sheet1", [][]interface{}{
			{"Sales"},
			{"region", "amount"},
			{"north", 10},
		})
		_, err := f.NewSheet("Empty")
		require.NoError(t, err)
		_, err = f.NewSheet("Q2 Data")
		require.NoError(t, err)
		setRows(t, f, "Q2 Data", [][]interface{}{
			{"a", "b"},
			{1.5, "x"},
		})
	})

	wb, err := NewLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "book.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, FileTypeXLSX, wb.FileType)
	assert.Equal(t, int64(len(data)), wb.Size)
	require.Len(t, wb.Sheets, 2)

	first := wb.Sheets[0]
	assert.Equal(t, "Sheet1", first.Name)
	assert.Equal(t, "Sheet1", first.Base)
	require.Equal(t, 3, first.Grid.Len())
	assert.Equal(t, grid.Name, grid.Classify(first.Grid.Row(0)))
	assert.Equal(t, grid.Number(10), first.Grid.Row(2)[1])

	second := wb.Sheets[1]
	assert.Equal(t, "Q2 Data", second.Name)
	assert.Equal(t, "Q2_Data", second.Base)
	assert.Equal(t, grid.Number(1.5), second.Grid.Row(1)[0])
	assert.Equal(t, 5, wb.RowCount())
}

func TestLoadXLSXMergedCells(t *testing.T) {
	data := workbookBytes(t, func(f *excelize.File) {
		setRows(t, f, "Sheet1", [][]interface{}{
			{"Title"},
			{"a", "b", "c"},
			{1, 2, 3},
		})
		require.NoError(t, f.MergeCell("Sheet1", "A1", "C1"))
	})

	plain, err := NewLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "m.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, grid.Name, grid.Classify(plain.Sheets[0].Grid.Row(0)))

	cfg := DefaultLoaderConfig()
	cfg.FillMergedCells = true
	filled, err := NewLoader(cfg, nil).Load(context.Background(), "m.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	row := filled.Sheets[0].Grid.Row(0)
	assert.Equal(t, grid.Header, grid.Classify(row))
	assert.Equal(t, grid.Text("Title"), row[2])
}

func TestLoadXLSXCorrupt(t *testing.T) {
	_, err := NewLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "bad.xlsx", strings.NewReader("not a zip"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeLoadFailed, errors.GetCode(err))
}

func TestLoadXLSXCancelled(t *testing.T) {
	data := workbookBytes(t, func(f *excelize.File) {
		setRows(t, f, "Sheet1", [][]interface{}{{"a", "b"}, {1, 2}})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(DefaultLoaderConfig(), nil).Load(ctx, "c.xlsx", bytes.NewReader(data))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFid,name\n1,ann\n2\n\nTotals\n"

	wb, err := NewLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "my report.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	s := wb.Sheets[0]
	assert.Equal(t, "my report.csv", s.Name)
	assert.Equal(t, "my_report", s.Base)
	assert.Equal(t, 2, s.Grid.Width())
	assert.Equal(t, grid.Text("id"), s.Grid.Row(0)[0], "BOM stripped")
	assert.Equal(t, grid.Empty(), s.Grid.Row(2)[1], "short row padded")
}

func TestLoadCSVWindows1252(t *testing.T) {
	input := "name,city\ncaf\xe9,M\xfcnchen\n"

	wb, err := NewLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "legacy.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, grid.Text("café"), wb.Sheets[0].Grid.Row(1)[0])
	assert.Equal(t, grid.Text("München"), wb.Sheets[0].Grid.Row(1)[1])
}

func TestLoadCSVMissingTokens(t *testing.T) {
	input := "Sales\nA,B\n1,2\nNaN,NaN\nNA,\n3,4\n"

	wb, err := NewLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "f.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	g := wb.Sheets[0].Grid
	assert.Equal(t, grid.Blank, grid.Classify(g.Row(3)))
	assert.Equal(t, grid.Blank, grid.Classify(g.Row(4)))
	assert.Equal(t, grid.Number(3), g.Row(5)[0])
}

func TestLoadCSVBlank(t *testing.T) {
	wb, err := NewLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "empty.csv", strings.NewReader(",,\n,,\n"))
	require.NoError(t, err)
	assert.Empty(t, wb.Sheets)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	wb, err := NewLoader(DefaultLoaderConfig(), nil).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", wb.FileName)
	assert.Equal(t, "data", wb.Sheets[0].Base)

	_, err = NewLoader(DefaultLoaderConfig(), nil).LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, errors.CodeLoadFailed, errors.GetCode(err))
}
