// Package currency formats amounts in the single display currency.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Code is the display currency
const Code = money.BRL

var brl = money.GetCurrency(Code)

// Format renders an amount as pt-BR currency text, e.g. R$1.234,56 or -R$50,00
func Format(amount decimal.Decimal) string {
	minor := amount.Shift(int32(brl.Fraction)).Round(0).IntPart()
	return brl.Formatter().Format(minor)
}

// FormatPercent renders a percentage with two decimals and a comma separator
func FormatPercent(p decimal.Decimal) string {
	return strings.Replace(p.StringFixed(2), ".", brl.Decimal, 1) + "%"
}
