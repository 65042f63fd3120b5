// Package extract runs the segmentation pipeline over a grid and resolves
// table-name collisions across the grids of one upload.
package extract

import (
	"time"

	"tablesift/domain/grid"
	"tablesift/domain/table"
	"tablesift/internal"
	"tablesift/internal/header"
	"tablesift/internal/materialize"
	"tablesift/internal/segment"
)

// Extractor turns one grid into its clean tables. It holds no per-call state
// and is safe for concurrent use.
type Extractor struct {
	logger *internal.Logger
}

// NewExtractor returns an Extractor logging through logger, or quietly when logger is nil
func NewExtractor(logger *internal.Logger) *Extractor {
	if logger == nil {
		logger = internal.Discard
	}
	return &Extractor{logger: logger.Named("extract")}
}

// Extract segments g, cleans each region's header row and materializes its
// data. Regions that end up with no usable rows or columns are left out.
// Tables come back in header-row order and are named "<base>_<title>".
func (e *Extractor) Extract(g grid.Grid, base string) []table.CleanTable {
	start := time.Now()
	res := segment.Segment(g, base)

	tables := make([]table.CleanTable, 0, len(res.Regions))
	for _, r := range res.Regions {
		e.logger.Trace("region %s: header row %d, data rows %d-%d", r.Name, r.HeaderRow, r.DataStart, r.DataEnd)
		columns := header.Clean(g.Row(r.HeaderRow))
		t, ok := materialize.Materialize(g, r, columns)
		if !ok {
			e.logger.Debug("region %s at row %d has no usable data", r.Name, r.HeaderRow)
			continue
		}
		tables = append(tables, t)
	}

	e.logger.Debug("%s: %d rows, %d regions, %d tables, %d anonymous, %d dropped titles (%.1fms)",
		base, g.Len(), len(res.Regions), len(tables), res.Anonymous, res.DroppedTitles, internal.Elapsed(start))
	return tables
}
