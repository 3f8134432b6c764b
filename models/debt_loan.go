package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtLoanCategory matches the smallint enum stored in the category column.
type DebtLoanCategory uint8

const (
	Debt DebtLoanCategory = 0
	Loan DebtLoanCategory = 1
)

func (c DebtLoanCategory) Valid() bool {
	return c == Debt || c == Loan
}

func (c DebtLoanCategory) String() string {
	switch c {
	case Debt:
		return "debt"
	case Loan:
		return "loan"
	default:
		return "unknown"
	}
}

// DebtLoan records money owed to or by a counterparty. Same lifecycle as
// Transaction: soft-deleted via Active, Created immutable after insert.
type DebtLoan struct {
	ID       uint             `gorm:"primaryKey" json:"id"`
	UserID   uint             `gorm:"index;not null" json:"user_id"`
	WithWho  string           `gorm:"size:255;not null" json:"with_who"`
	Title    *string          `gorm:"size:255" json:"title"`
	Amount   decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"amount"`
	Category DebtLoanCategory `gorm:"type:smallint;not null" json:"category"`
	Created  time.Time        `gorm:"not null;index" json:"created"`
	Modified time.Time        `gorm:"not null" json:"modified"`
	Active   bool             `gorm:"not null;default:true" json:"active"`
}

// String returns "<with_who>: <title>" when a title is present, else just
// the counterparty name.
func (dl DebtLoan) String() string {
	if dl.Title != nil && *dl.Title != "" {
		return dl.WithWho + ": " + *dl.Title
	}
	return dl.WithWho
}
