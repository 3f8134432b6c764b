package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	ok := Transaction{Amount: decimal.RequireFromString("42.00"), Category: Expense}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}
	bad := Transaction{Amount: decimal.RequireFromString("1.00"), Category: TransactionCategory(5)}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestAmountPrecisionLimits(t *testing.T) {
	threeDecimals := Transaction{Amount: decimal.RequireFromString("1.999"), Category: Expense}
	if err := threeDecimals.Validate(); !errors.Is(err, ErrAmountPrecision) {
		t.Fatalf("expected ErrAmountPrecision, got %v", err)
	}
	// 8 integer digits + 2 decimals is the widest a (10,2) column holds
	widest := Transaction{Amount: decimal.RequireFromString("99999999.99"), Category: Income}
	if err := widest.Validate(); err != nil {
		t.Fatalf("widest legal amount rejected: %v", err)
	}
	tooWide := Transaction{Amount: decimal.RequireFromString("100000000.00"), Category: Income}
	if err := tooWide.Validate(); !errors.Is(err, ErrAmountTooManyDig) {
		t.Fatalf("expected ErrAmountTooManyDig, got %v", err)
	}
	// sign is carried by the category, negative magnitudes are not rejected here
	negative := Transaction{Amount: decimal.RequireFromString("-5.00"), Category: Expense}
	if err := negative.Validate(); err != nil {
		t.Fatalf("negative amount rejected: %v", err)
	}
}

func TestDebtLoanValidate(t *testing.T) {
	ok := DebtLoan{WithWho: "ACME co.", Amount: decimal.RequireFromString("10.00"), Category: Loan}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid debt/loan rejected: %v", err)
	}
	missing := DebtLoan{Amount: decimal.RequireFromString("10.00"), Category: Debt}
	if err := missing.Validate(); !errors.Is(err, ErrWithWhoRequired) {
		t.Fatalf("expected ErrWithWhoRequired, got %v", err)
	}
}
