package ports

import (
	"context"

	"tablesift/models"
)

// UploadRepository records processed uploads
type UploadRepository interface {
	Create(ctx context.Context, u *models.UploadedFile) error
	// DeactivateAll marks every existing upload inactive, run before a new
	// upload replaces the stored tables
	DeactivateAll(ctx context.Context) error
	List(ctx context.Context, limit int, activeOnly bool) ([]models.UploadedFile, error)
}
