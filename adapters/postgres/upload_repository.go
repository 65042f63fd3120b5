package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tablesift/models"
	"tablesift/ports"
)

// uploadRepository implements the UploadRepository interface over uploaded_files
type uploadRepository struct {
	db *sqlx.DB
}

// NewUploadRepository creates a new upload repository
func NewUploadRepository(db *sqlx.DB) ports.UploadRepository {
	return &uploadRepository{db: db}
}

// Create inserts a new ledger entry
func (r *uploadRepository) Create(ctx context.Context, u *models.UploadedFile) error {
	query := `INSERT INTO uploaded_files (
		id, filename, file_size, file_type, content_hash, tables_created,
		row_count, column_count, uploaded_at, is_active
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Filename, u.FileSize, u.FileType, u.ContentHash, u.TablesCreated,
		u.RowCount, u.ColumnCount, u.UploadedAt, u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload record: %w", err)
	}
	return nil
}

// DeactivateAll clears the active flag of every earlier upload
func (r *uploadRepository) DeactivateAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE uploaded_files SET is_active = FALSE WHERE is_active`); err != nil {
		return fmt.Errorf("failed to deactivate uploads: %w", err)
	}
	return nil
}

// List returns the most recent uploads first
func (r *uploadRepository) List(ctx context.Context, limit int, activeOnly bool) ([]models.UploadedFile, error) {
	query := `SELECT
		id, filename, file_size, file_type, COALESCE(content_hash, '') AS content_hash, tables_created,
		row_count, column_count, uploaded_at, is_active
	FROM uploaded_files
	WHERE is_active OR NOT $1
	ORDER BY uploaded_at DESC
	LIMIT $2`

	uploads := []models.UploadedFile{}
	if err := r.db.SelectContext(ctx, &uploads, query, activeOnly, limit); err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	return uploads, nil
}
