package grid

// Sheet is one loaded grid together with the name its tables are prefixed with
type Sheet struct {
	// Name is the sheet name as found in the file, or the file name for CSV
	Name string
	// Base is Name sanitized for use as a table-name prefix
	Base string
	Grid Grid
}

// Workbook is every non-blank sheet of one uploaded file, in file order
type Workbook struct {
	FileName string
	FileType string
	Size     int64
	Sheets   []Sheet
}

// RowCount sums the rows of every sheet
func (w *Workbook) RowCount() int {
	n := 0
	for _, s := range w.Sheets {
		n += s.Grid.Len()
	}
	return n
}
