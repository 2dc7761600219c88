package ledger

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

var hundred = decimal.NewFromInt(100)

// profitAgainst returns amount-reference and the percentage over reference.
// The percentage is zero when the reference is not positive.
func profitAgainst(amount, reference decimal.Decimal) (profit, percent decimal.Decimal) {
	profit = amount.Sub(reference)
	return profit, percentOf(profit, reference)
}

// percentOf returns part/base*100, or zero for a non-positive base
func percentOf(part, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return part.Div(base).Mul(hundred)
}

// addReference is the reference for a new investment: the amount of the last
// entry of the same type in current collection order, before the new entry is
// appended. Position decides, not date.
func addReference(entries []models.Investment, typ string) decimal.Decimal {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Type == typ {
			return entries[i].Amount
		}
	}
	return decimal.Zero
}

// editReference is the reference for an edited investment: among the other
// entries of the same type, the closest one dated strictly before dateISO.
func editReference(entries []models.Investment, id int64, typ, dateISO string) decimal.Decimal {
	var series []models.Investment
	for _, e := range entries {
		if e.Type == typ && e.ID != id {
			series = append(series, e)
		}
	}
	slices.SortStableFunc(series, func(a, b models.Investment) int {
		return strings.Compare(a.DateISO, b.DateISO)
	})

	reference := decimal.Zero
	for _, e := range series {
		if e.DateISO >= dateISO {
			break
		}
		reference = e.Amount
	}
	return reference
}

// cryptoPercent derives the reference as amount-profit and returns the percentage over it
func cryptoPercent(amount, profit decimal.Decimal) decimal.Decimal {
	return percentOf(profit, amount.Sub(profit))
}
