// Package statement normalizes exported bank-statement CSV files into ledger
// rows. Exports differ per bank: separators vary, the header is not always
// the first line, and amounts show up with either decimal point or comma.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbooks/models"
)

// Row is one normalized statement line ready to become a Transaction.
type Row struct {
	Date     time.Time
	Title    string
	Amount   decimal.Decimal
	Category models.TransactionCategory
}

var ErrNoHeader = errors.New("statement: no header row with a date column found")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
}

// ParseCSV reads a whole statement export. Lines before the header are
// skipped; the header must name at least date and amount columns. Bad rows
// abort the parse with the row number so the file can be fixed and re-dropped.
func ParseCSV(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(raw), "\n")

	headerIdx := -1
	sep := ","
	for i, line := range lines {
		s := ","
		if strings.Contains(line, ";") {
			s = ";"
		}
		// whole-cell match only: preamble prose mentioning dates or amounts
		// must not be mistaken for the header
		if isHeaderLine(line, s) {
			headerIdx = i
			sep = s
			break
		}
	}
	if headerIdx == -1 {
		return nil, ErrNoHeader
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	reader.Comma = rune(sep[0])
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	colMap := make(map[string]int)
	for i, h := range records[0] {
		colMap[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := colMap["date"]
	if !ok {
		return nil, ErrNoHeader
	}
	amountCol, ok := colMap["amount"]
	if !ok {
		return nil, ErrNoHeader
	}
	titleCol, hasTitle := colMap["title"]
	if !hasTitle {
		titleCol, hasTitle = colMap["description"]
	}
	categoryCol, hasCategory := colMap["category"]

	var rows []Row
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) <= dateCol || len(rec) <= amountCol {
			continue
		}
		if isBlank(rec) {
			continue
		}
		date, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("statement: row %d: %w", i+1, err)
		}
		amount, err := parseAmount(rec[amountCol])
		if err != nil {
			return nil, fmt.Errorf("statement: row %d: %w", i+1, err)
		}
		row := Row{Date: date, Amount: amount, Category: models.Expense}
		if hasTitle && len(rec) > titleCol {
			row.Title = strings.TrimSpace(rec[titleCol])
		}
		if hasCategory && len(rec) > categoryCol {
			cat, err := parseCategory(rec[categoryCol])
			if err != nil {
				return nil, fmt.Errorf("statement: row %d: %w", i+1, err)
			}
			row.Category = cat
		} else if amount.IsNegative() {
			// signed exports: negative means money out, the ledger keeps
			// direction in the category and the magnitude in the amount
			row.Amount = amount.Neg()
		} else {
			row.Category = models.Income
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// isHeaderLine reports whether the line, split on sep, carries both a date
// and an amount column cell.
func isHeaderLine(line, sep string) bool {
	var hasDate, hasAmount bool
	for _, cell := range strings.Split(line, sep) {
		switch strings.ToLower(strings.Trim(strings.TrimSpace(cell), `"`)) {
		case "date":
			hasDate = true
		case "amount":
			hasAmount = true
		}
	}
	return hasDate && hasAmount
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	// decimal-comma exports: "1.234,56" -> "1234.56"
	if strings.Contains(s, ",") && strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unrecognized amount %q", s)
	}
	return d, nil
}

func parseCategory(s string) (models.TransactionCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "0":
		return models.Expense, nil
	case "income", "1":
		return models.Income, nil
	default:
		return 0, fmt.Errorf("unrecognized category %q", s)
	}
}
