package models

import "gorm.io/gorm"

// SheetTab registers a named sheet in the SQL-backed document store.
type SheetTab struct {
	gorm.Model
	Name string `gorm:"not null;uniqueIndex"`
}

// SheetRow is one appended row; Cells holds the JSON-encoded cell values.
type SheetRow struct {
	gorm.Model
	Sheet    string `gorm:"not null;index:idx_sheet_position,priority:1"`
	Position int    `gorm:"not null;index:idx_sheet_position,priority:2"`
	Cells    string `gorm:"type:text;not null"`
}
