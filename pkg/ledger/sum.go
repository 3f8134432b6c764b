package ledger

import (
	"github.com/shopspring/decimal"

	"finbooks/models"
)

// SumTransactions adds up the amounts of the records matching the category.
// It returns nil, not zero, when nothing matches: callers (and the original
// listing view) distinguish "no expenses recorded" from "expenses netting to
// zero".
func SumTransactions(txs []models.Transaction, cat models.TransactionCategory) *decimal.Decimal {
	var sum decimal.Decimal
	matched := false
	for _, t := range txs {
		if t.Category != cat {
			continue
		}
		sum = sum.Add(t.Amount)
		matched = true
	}
	if !matched {
		return nil
	}
	return &sum
}

// SumDebtLoans is the debt/loan counterpart of SumTransactions.
func SumDebtLoans(dls []models.DebtLoan, cat models.DebtLoanCategory) *decimal.Decimal {
	var sum decimal.Decimal
	matched := false
	for _, dl := range dls {
		if dl.Category != cat {
			continue
		}
		sum = sum.Add(dl.Amount)
		matched = true
	}
	if !matched {
		return nil
	}
	return &sum
}
