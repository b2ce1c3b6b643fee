// Package docstore is the append-only tabular store keyed by sheet name.
//
// Every backend (Google Sheets, Postgres through gorm, SQLite, memory) keeps
// rows as ordered string cells and creates a sheet on its first write.
package docstore

import (
	"context"
	"errors"
)

// ErrSheetNotFound is returned by ReadAll for a sheet that was never written.
var ErrSheetNotFound = errors.New("sheet not found")

// Store is the document store consumed by the gateway.
type Store interface {
	// RowCount returns the number of rows, header included; 0 for a missing sheet.
	RowCount(ctx context.Context, sheet string) (int, error)
	// AppendRow adds one row at the end of the sheet, creating the sheet if needed.
	AppendRow(ctx context.Context, sheet string, row []string) error
	// ReadAll returns every row in insertion order.
	ReadAll(ctx context.Context, sheet string) ([][]string, error)
	// EnsureSheet creates the sheet when absent and reports whether it did.
	EnsureSheet(ctx context.Context, sheet string) (bool, error)
}
