package excel

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"tablesift/domain/table"
	"tablesift/internal/errors"
)

// WriteCSV writes t as CSV: one header line of column names, then one line
// per row. Empty and absent cells are written as empty fields.
func WriteCSV(w io.Writer, t table.CleanTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, c := range row {
			record[j] = c.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportDir writes each table to dir/<name>.csv, creating dir if needed, and
// returns the paths written
func ExportDir(dir string, tables []table.CleanTable) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create export directory %s", dir)
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+".csv")
		if err := writeFile(path, t); err != nil {
			return paths, errors.Wrapf(err, "failed to export table %s", t.Name)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, t table.CleanTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
