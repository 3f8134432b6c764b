package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"finbooks/models"
)

func tx(amount string, cat models.TransactionCategory) models.Transaction {
	return models.Transaction{Amount: decimal.RequireFromString(amount), Category: cat}
}

func TestSumTransactionsByCategory(t *testing.T) {
	txs := []models.Transaction{
		tx("42.00", models.Expense),
		tx("10.50", models.Expense),
		tx("100.00", models.Income),
	}
	exp := SumTransactions(txs, models.Expense)
	if exp == nil || !exp.Equal(decimal.RequireFromString("52.50")) {
		t.Fatalf("expense sum = %v, want 52.50", exp)
	}
	inc := SumTransactions(txs, models.Income)
	if inc == nil || !inc.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("income sum = %v, want 100.00", inc)
	}
}

func TestSumTransactionsEmptyMatchIsNil(t *testing.T) {
	// nil, not zero: the caller must be able to tell "nothing recorded"
	// from "netted to zero"
	txs := []models.Transaction{tx("5.00", models.Expense)}
	if got := SumTransactions(txs, models.Income); got != nil {
		t.Fatalf("income sum over expense-only set = %v, want nil", got)
	}
	if got := SumTransactions(nil, models.Expense); got != nil {
		t.Fatalf("sum over empty set = %v, want nil", got)
	}
}

func TestSumTransactionsZeroIsNotNil(t *testing.T) {
	txs := []models.Transaction{tx("0.00", models.Income)}
	got := SumTransactions(txs, models.Income)
	if got == nil {
		t.Fatalf("a matching zero-amount record must yield 0, not nil")
	}
	if !got.IsZero() {
		t.Fatalf("sum = %v, want 0", got)
	}
}

func TestSumDebtLoans(t *testing.T) {
	dls := []models.DebtLoan{
		{WithWho: "ACME co.", Amount: decimal.RequireFromString("30.00"), Category: models.Debt},
		{WithWho: "FooBar inc.", Amount: decimal.RequireFromString("12.00"), Category: models.Debt},
	}
	debt := SumDebtLoans(dls, models.Debt)
	if debt == nil || !debt.Equal(decimal.RequireFromString("42.00")) {
		t.Fatalf("debt sum = %v, want 42.00", debt)
	}
	if loan := SumDebtLoans(dls, models.Loan); loan != nil {
		t.Fatalf("loan sum = %v, want nil", loan)
	}
}
