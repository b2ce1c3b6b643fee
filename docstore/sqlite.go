package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sheet_tabs (
  name       TEXT PRIMARY KEY,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS sheet_rows (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  sheet      TEXT NOT NULL REFERENCES sheet_tabs(name),
  cells      TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet, id);
`

// SQLiteStore is a single-file document store for local deployments.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
// Use "file:name?mode=memory&cache=shared" for an in-memory database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RowCount(ctx context.Context, sheet string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_rows WHERE sheet = ?`, sheet).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rows of %q: %w", sheet, err)
	}
	return n, nil
}

func (s *SQLiteStore) AppendRow(ctx context.Context, sheet string, row []string) error {
	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sheet_tabs(name) VALUES(?)`, sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO sheet_rows(sheet, cells) VALUES(?, ?)`, sheet, string(cells)); err != nil {
		return fmt.Errorf("append row to %q: %w", sheet, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_tabs WHERE name = ?`, sheet).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("find sheet %q: %w", sheet, err)
	}
	if exists == 0 {
		return nil, ErrSheetNotFound
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY id ASC`, sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}
	defer rows.Close()

	out := [][]string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode row of %q: %w", sheet, err)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) EnsureSheet(ctx context.Context, sheet string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO sheet_tabs(name) VALUES(?)`, sheet)
	if err != nil {
		return false, fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
