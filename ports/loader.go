package ports

import (
	"context"
	"io"

	"tablesift/domain/grid"
)

// GridLoader turns an uploaded file into raw grids, one per non-blank sheet
type GridLoader interface {
	Load(ctx context.Context, name string, r io.Reader) (*grid.Workbook, error)
}
