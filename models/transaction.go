package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCategory matches the smallint enum stored in the category column.
type TransactionCategory uint8

const (
	Expense TransactionCategory = 0
	Income  TransactionCategory = 1
)

// Valid reports whether the category is one of the known values.
func (c TransactionCategory) Valid() bool {
	return c == Expense || c == Income
}

func (c TransactionCategory) String() string {
	switch c {
	case Expense:
		return "expense"
	case Income:
		return "income"
	default:
		return "unknown"
	}
}

// Transaction is a single income or expense record owned by a user.
// Rows are never hard-deleted: "delete" flips Active to false and the row
// stays addressable by id. Created is set once at insert and never touched
// by updates.
type Transaction struct {
	ID       uint                `gorm:"primaryKey" json:"id"`
	UserID   uint                `gorm:"index;not null" json:"user_id"`
	Title    *string             `gorm:"size:255" json:"title"`
	Amount   decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"amount"`
	Category TransactionCategory `gorm:"type:smallint;not null" json:"category"`
	Created  time.Time           `gorm:"not null;index" json:"created"`
	Modified time.Time           `gorm:"not null" json:"modified"`
	Active   bool                `gorm:"not null;default:true" json:"active"`
}

// String returns the display form of the record, which is its title.
func (t Transaction) String() string {
	if t.Title == nil {
		return ""
	}
	return *t.Title
}
