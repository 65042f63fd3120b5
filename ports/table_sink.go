package ports

import (
	"context"

	"tablesift/domain/table"
)

// TableSink stores the tables of one upload
type TableSink interface {
	EnsureSchema(ctx context.Context) error
	// ReplaceAll atomically swaps every stored table for tables and returns
	// the names dropped
	ReplaceAll(ctx context.Context, tables []table.CleanTable) ([]string, error)
}
