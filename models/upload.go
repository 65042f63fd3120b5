package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"tablesift/domain/core"
	"tablesift/domain/table"
)

// UploadedFile is one ledger entry: a file whose tables were stored
type UploadedFile struct {
	ID            core.UploadID `json:"id" db:"id"`
	Filename      string        `json:"filename" db:"filename"`
	FileSize      int64         `json:"file_size" db:"file_size"`
	FileType      string        `json:"file_type" db:"file_type"`
	ContentHash   string        `json:"content_hash" db:"content_hash"`
	TablesCreated TableList     `json:"tables_created" db:"tables_created"`
	RowCount      int           `json:"row_count" db:"row_count"`
	ColumnCount   int           `json:"column_count" db:"column_count"`
	UploadedAt    time.Time     `json:"uploaded_at" db:"uploaded_at"`
	IsActive      bool          `json:"is_active" db:"is_active"`
}

// TableList is stored as a JSON array column
type TableList []table.Summary

// Names returns the table names in order
func (l TableList) Names() []string {
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = s.Name
	}
	return out
}

// Value implements driver.Valuer
func (l TableList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]table.Summary(l))
}

// Scan implements sql.Scanner
func (l *TableList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = TableList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into TableList", src)
	}
	return json.Unmarshal(data, (*[]table.Summary)(l))
}
