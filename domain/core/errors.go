package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrTooManyRows     = errors.New("row limit exceeded")

	// Extraction errors
	ErrNoTables = errors.New("no valid data found in file")
)

// Error constructors with context
func NewUnsupportedFileError(name string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
}

func NewTooManyRowsError(sheet string, rows, limit int) error {
	return fmt.Errorf("%w: sheet %s has %d rows, limit is %d", ErrTooManyRows, sheet, rows, limit)
}
