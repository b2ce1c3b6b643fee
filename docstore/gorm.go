package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Teddy-225/Event-Travel/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps sheets in Postgres, one SheetRow per appended row.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) RowCount(ctx context.Context, sheet string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SheetRow{}).Where("sheet = ?", sheet).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count rows of %q: %w", sheet, err)
	}
	return int(count), nil
}

func (s *GormStore) AppendRow(ctx context.Context, sheet string, row []string) error {
	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureTab(tx, sheet); err != nil {
			return err
		}

		var last int
		err := tx.Model(&models.SheetRow{}).
			Where("sheet = ?", sheet).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error
		if err != nil {
			return fmt.Errorf("read last position of %q: %w", sheet, err)
		}

		rec := models.SheetRow{Sheet: sheet, Position: last + 1, Cells: string(cells)}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("append row to %q: %w", sheet, err)
		}
		return nil
	})
}

func (s *GormStore) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	db := s.db.WithContext(ctx)

	var tab models.SheetTab
	if err := db.Where("name = ?", sheet).First(&tab).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("find sheet %q: %w", sheet, err)
	}

	var rows []models.SheetRow
	if err := db.Where("sheet = ?", sheet).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		var cells []string
		if err := json.Unmarshal([]byte(r.Cells), &cells); err != nil {
			return nil, fmt.Errorf("decode row %d of %q: %w", r.Position, sheet, err)
		}
		out = append(out, cells)
	}
	return out, nil
}

func (s *GormStore) EnsureSheet(ctx context.Context, sheet string) (bool, error) {
	return ensureTab(s.db.WithContext(ctx), sheet)
}

func ensureTab(db *gorm.DB, sheet string) (bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SheetTab{Name: sheet})
	if res.Error != nil {
		return false, fmt.Errorf("create sheet %q: %w", sheet, res.Error)
	}
	return res.RowsAffected > 0, nil
}
