package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCategory  = errors.New("invalid category")
	ErrAmountPrecision  = errors.New("amount allows at most 2 decimal places")
	ErrAmountTooManyDig = errors.New("amount allows at most 10 digits in total")
	ErrWithWhoRequired  = errors.New("with_who is required")
)

// validateAmount enforces the decimal(10,2) column shape: at most two
// fractional digits and at most ten significant digits overall. The sign is
// deliberately unconstrained; direction is carried by the category.
func validateAmount(d decimal.Decimal) error {
	if d.Exponent() < -2 {
		return ErrAmountPrecision
	}
	if d.Shift(2).Truncate(0).NumDigits() > 10 {
		return ErrAmountTooManyDig
	}
	return nil
}

// Validate checks the field constraints that the storage schema cannot
// express. UserID and Created are out of scope here: ownership is assigned
// by the create path and never re-validated.
func (t Transaction) Validate() error {
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	return validateAmount(t.Amount)
}

func (dl DebtLoan) Validate() error {
	if dl.WithWho == "" {
		return ErrWithWhoRequired
	}
	if !dl.Category.Valid() {
		return ErrInvalidCategory
	}
	return validateAmount(dl.Amount)
}
