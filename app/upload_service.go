package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"tablesift/domain/core"
	"tablesift/domain/grid"
	"tablesift/domain/table"
	"tablesift/internal"
	"tablesift/internal/errors"
	"tablesift/internal/extract"
	"tablesift/internal/sanitize"
	"tablesift/models"
	"tablesift/ports"
)

// UploadOptions holds the caller policies applied around extraction
type UploadOptions struct {
	NamePolicy extract.NamePolicy
	Workers    int
	MaxRows    int
}

// DefaultUploadOptions matches the environment defaults
func DefaultUploadOptions() UploadOptions {
	return UploadOptions{NamePolicy: extract.PolicyLastWins, Workers: 4, MaxRows: 1000000}
}

// ExtractResult holds the sanitized tables recovered from one file
type ExtractResult struct {
	FileName string             `json:"file_name"`
	FileType string             `json:"file_type"`
	Size     int64              `json:"file_size"`
	Hash     core.Hash          `json:"content_hash"`
	Sheets   int                `json:"sheets"`
	Tables   []table.CleanTable `json:"tables"`
}

// Summaries describes each extracted table without its rows
func (r *ExtractResult) Summaries() models.TableList {
	out := make(models.TableList, len(r.Tables))
	for i, t := range r.Tables {
		out[i] = t.Summarize()
	}
	return out
}

// UploadService runs the load, extract and store pipeline for uploaded files
type UploadService struct {
	loader    ports.GridLoader
	extractor *extract.Extractor
	sink      ports.TableSink
	uploads   ports.UploadRepository
	opts      UploadOptions
	logger    *internal.Logger
}

// NewUploadService creates an upload service. sink and uploads may be nil
// when only Extract is used.
func NewUploadService(loader ports.GridLoader, sink ports.TableSink, uploads ports.UploadRepository, opts UploadOptions, logger *internal.Logger) *UploadService {
	if logger == nil {
		logger = internal.Discard
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &UploadService{
		loader:    loader,
		extractor: extract.NewExtractor(logger),
		sink:      sink,
		uploads:   uploads,
		opts:      opts,
		logger:    logger.Named("upload"),
	}
}

// Extract loads the file called name from r and returns its tables with
// unique names and no non-finite numbers
func (s *UploadService) Extract(ctx context.Context, name string, r io.Reader) (*ExtractResult, error) {
	startTime := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.LoadFailed(name, err)
	}
	wb, err := s.loader.Load(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := s.checkRows(wb); err != nil {
		return nil, err
	}

	perSheet, err := s.extractSheets(ctx, wb.Sheets)
	if err != nil {
		return nil, err
	}

	var merged []table.CleanTable
	for _, ts := range perSheet {
		merged = append(merged, ts...)
	}
	tables := sanitize.Tables(extract.Resolve(merged, s.opts.NamePolicy))
	if len(tables) == 0 {
		return nil, errors.WithCode(errors.CodeNoTables, fmt.Errorf("%w: %s", core.ErrNoTables, name))
	}

	result := &ExtractResult{
		FileName: name,
		FileType: wb.FileType,
		Size:     int64(len(data)),
		Hash:     core.NewHash(data),
		Sheets:   len(wb.Sheets),
		Tables:   tables,
	}
	s.logger.Info("%s: %d tables from %d sheets in %.2fms (hash %s)",
		name, len(tables), len(wb.Sheets), internal.Elapsed(startTime), result.Hash.Short())
	return result, nil
}

func (s *UploadService) checkRows(wb *grid.Workbook) error {
	for _, sheet := range wb.Sheets {
		if sheet.Grid.Len() > s.opts.MaxRows {
			return errors.WithCode(errors.CodeInvalidInput,
				core.NewTooManyRowsError(sheet.Name, sheet.Grid.Len(), s.opts.MaxRows))
		}
	}
	return nil
}

// extractSheets extracts every sheet concurrently. Each goroutine owns one
// sheet and one result slot, so results keep sheet order.
func (s *UploadService) extractSheets(ctx context.Context, sheets []grid.Sheet) ([][]table.CleanTable, error) {
	results := make([][]table.CleanTable, len(sheets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, sheet := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.extractor.Extract(sheet.Grid, sheet.Base)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Upload extracts the file and replaces the stored tables with its tables,
// then records the upload as the only active one
func (s *UploadService) Upload(ctx context.Context, name string, r io.Reader) (*models.UploadedFile, error) {
	if s.sink == nil || s.uploads == nil {
		return nil, errors.ConfigInvalid("upload requires a table sink and an upload repository")
	}

	result, err := s.Extract(ctx, name, r)
	if err != nil {
		return nil, err
	}

	if err := s.sink.EnsureSchema(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to prepare upload schema")
	}
	dropped, err := s.sink.ReplaceAll(ctx, result.Tables)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store upload tables")
	}
	s.logger.Debug("replaced %d previously stored tables", len(dropped))

	record := &models.UploadedFile{
		ID:            core.NewUploadID(),
		Filename:      name,
		FileSize:      result.Size,
		FileType:      result.FileType,
		ContentHash:   result.Hash.String(),
		TablesCreated: result.Summaries(),
		UploadedAt:    time.Now().UTC(),
		IsActive:      true,
	}
	for _, t := range result.Tables {
		record.RowCount += t.RowCount()
		record.ColumnCount += t.ColumnCount()
	}

	if err := s.uploads.DeactivateAll(ctx); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	if err := s.uploads.Create(ctx, record); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}

	s.logger.Info("%s stored as upload %s (%d tables, %d rows)", name, record.ID, len(result.Tables), record.RowCount)
	return record, nil
}

// ListUploads returns recent ledger entries, newest first
func (s *UploadService) ListUploads(ctx context.Context, limit int, activeOnly bool) ([]models.UploadedFile, error) {
	if s.uploads == nil {
		return nil, errors.ConfigInvalid("listing uploads requires an upload repository")
	}
	return s.uploads.List(ctx, limit, activeOnly)
}
