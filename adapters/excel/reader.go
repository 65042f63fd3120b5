package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"tablesift/domain/core"
	"tablesift/domain/grid"
	"tablesift/internal"
	"tablesift/internal/errors"
	"tablesift/internal/ident"
)

const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads CSV and XLSX files into raw grids, one per non-blank sheet
type Loader struct {
	config LoaderConfig
	logger *internal.Logger
}

// NewLoader creates a loader; a nil logger logs nothing
func NewLoader(config LoaderConfig, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.Discard
	}
	return &Loader{config: config, logger: logger.Named("loader")}
}

// DetectFileType maps a file name to "csv" or "xlsx" by extension
func DetectFileType(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FileTypeXLSX, nil
	default:
		return "", errors.WithCode(errors.CodeUnsupportedFile, core.NewUnsupportedFileError(name))
	}
}

// LoadFile opens path and loads it under its base name
func (l *Loader) LoadFile(ctx context.Context, path string) (*grid.Workbook, error) {
	if _, err := DetectFileType(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.LoadFailed(path, err)
	}
	defer f.Close()
	return l.Load(ctx, filepath.Base(path), f)
}

// Load reads r as the file called name. The type comes from the extension.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader) (*grid.Workbook, error) {
	fileType, err := DetectFileType(name)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.LoadFailed(name, err)
	}

	wb := &grid.Workbook{FileName: name, FileType: fileType, Size: int64(len(data))}
	switch fileType {
	case FileTypeCSV:
		err = l.readCSV(wb, data)
	default:
		err = l.readExcel(ctx, wb, data)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("%s loaded in %.2fms (%d sheets, %d rows, %d bytes)",
		name, internal.Elapsed(startTime), len(wb.Sheets), wb.RowCount(), wb.Size)
	return wb, nil
}

// readExcel loads every sheet in workbook order, skipping blank ones
func (l *Loader) readExcel(ctx context.Context, wb *grid.Workbook, data []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return errors.LoadFailed(wb.FileName, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return err
		}

		readStart := time.Now()
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: l.config.RawValues})
		if err != nil {
			return errors.LoadFailed(wb.FileName+"!"+sheet, err)
		}
		if l.config.FillMergedCells {
			if rows, err = fillMerged(f, sheet, rows); err != nil {
				return errors.LoadFailed(wb.FileName+"!"+sheet, err)
			}
		}

		g := grid.FromStrings(rows)
		if g.IsBlank() {
			l.logger.Debug("sheet %s is empty, skipped", sheet)
			continue
		}
		l.logger.Debug("sheet %s read in %.2fms (%d rows)", sheet, internal.Elapsed(readStart), g.Len())
		wb.Sheets = append(wb.Sheets, grid.Sheet{Name: sheet, Base: ident.Clean(sheet), Grid: g})
	}
	return nil
}

// fillMerged writes each merged range's top-left value into all its cells
func fillMerged(f *excelize.File, sheet string, rows [][]string) ([][]string, error) {
	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}

	for _, mc := range merged {
		c1, r1, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		c2, r2, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		value := cellAt(rows, r1-1, c1-1)
		if value == "" {
			continue
		}

		for len(rows) < r2 {
			rows = append(rows, nil)
		}
		for r := r1 - 1; r < r2; r++ {
			for len(rows[r]) < c2 {
				rows[r] = append(rows[r], "")
			}
			for c := c1 - 1; c < c2; c++ {
				rows[r][c] = value
			}
		}
	}
	return rows, nil
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// readCSV loads a CSV file as a single sheet named after the file
func (l *Loader) readCSV(wb *grid.Workbook, data []byte) error {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return errors.LoadFailed(wb.FileName, err)
		}
		l.logger.Warn("%s is not valid UTF-8, decoded as Windows-1252", wb.FileName)
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return errors.LoadFailed(wb.FileName, err)
	}
	l.logger.Debug("CSV file read in %.2fms (%d rows)", internal.Elapsed(readStart), len(rows))

	g := grid.FromStrings(rows)
	if g.IsBlank() {
		return nil
	}
	stem := strings.TrimSuffix(wb.FileName, filepath.Ext(wb.FileName))
	wb.Sheets = append(wb.Sheets, grid.Sheet{Name: wb.FileName, Base: ident.Clean(stem), Grid: g})
	return nil
}
