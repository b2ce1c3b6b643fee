package docstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore writes rows into tabs of a single Google spreadsheet.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu    sync.Mutex
	known map[string]bool
}

// NewSheetsStore connects to the Sheets API. opts usually carries
// option.WithCredentialsFile; without it Application Default Credentials are used.
func NewSheetsStore(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsStore, error) {
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID, known: make(map[string]bool)}, nil
}

func (s *SheetsStore) RowCount(ctx context.Context, sheet string) (int, error) {
	exists, err := s.hasSheet(ctx, sheet)
	if err != nil || !exists {
		return 0, err
	}
	values, err := s.values(ctx, sheet)
	if err != nil {
		return 0, err
	}
	return len(values), nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, sheet string, row []string) error {
	if _, err := s.EnsureSheet(ctx, sheet); err != nil {
		return err
	}

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, quoteSheet(sheet), &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %q: %w", sheet, err)
	}
	return nil
}

func (s *SheetsStore) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	exists, err := s.hasSheet(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSheetNotFound
	}
	values, err := s.values(ctx, sheet)
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out, nil
}

func (s *SheetsStore) EnsureSheet(ctx context.Context, sheet string) (bool, error) {
	exists, err := s.hasSheet(ctx, sheet)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheet},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("add sheet %q: %w", sheet, err)
	}

	s.mu.Lock()
	s.known[sheet] = true
	s.mu.Unlock()
	return true, nil
}

// hasSheet checks the spreadsheet's tabs. Positive answers are remembered
// since tabs are never removed by this service.
func (s *SheetsStore) hasSheet(ctx context.Context, sheet string) (bool, error) {
	s.mu.Lock()
	known := s.known[sheet]
	s.mu.Unlock()
	if known {
		return true, nil
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("open spreadsheet: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			s.known[sh.Properties.Title] = true
		}
	}
	return s.known[sheet], nil
}

func (s *SheetsStore) values(ctx context.Context, sheet string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return resp.Values, nil
}

// quoteSheet turns a tab title into an A1 range covering the whole tab.
func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
