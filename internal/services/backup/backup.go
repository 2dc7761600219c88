// Package backup converts ledger collections to and from the portable JSON backup document.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// ErrInvalidBackup is returned when a document cannot be read as a backup
var ErrInvalidBackup = errors.New("invalid backup file")

// Document is the exported backup layout
type Document struct {
	Expenses    []models.Expense          `json:"expenses"`
	Investments []models.Investment       `json:"investments"`
	Cryptos     []models.CryptoInvestment `json:"cryptoInvestments"`
	ExportDate  string                    `json:"exportDate"`
}

// FileName is the suggested download name for a backup taken at now
func FileName(now time.Time) string {
	return fmt.Sprintf("fintrack-backup-%s.json", now.Format(models.ISODateLayout))
}

// Export renders the collections as an indented backup document stamped with now
func Export(c models.Collections, now time.Time) ([]byte, error) {
	doc := Document{
		Expenses:    nonNil(c.Expenses),
		Investments: nonNil(c.Investments),
		Cryptos:     nonNil(c.Cryptos),
		ExportDate:  now.UTC().Format(time.RFC3339Nano),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Parse reads a backup document. Missing collections are empty. Documents
// written by the older browser version, with Portuguese keys, are converted.
func Parse(data []byte) (models.Collections, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return models.Collections{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidBackup)
	}

	if isLegacy(fields) {
		return parseLegacy(fields)
	}

	var c models.Collections
	if err := decodeField(fields, "expenses", &c.Expenses); err != nil {
		return models.Collections{}, err
	}
	if err := decodeField(fields, "investments", &c.Investments); err != nil {
		return models.Collections{}, err
	}
	if err := decodeField(fields, "cryptoInvestments", &c.Cryptos); err != nil {
		return models.Collections{}, err
	}
	normalize(&c)
	return c, nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidBackup, key, err)
	}
	return nil
}

// normalize fills whichever of dateISO and date is missing and replaces nil collections
func normalize(c *models.Collections) {
	c.Expenses = nonNil(c.Expenses)
	c.Investments = nonNil(c.Investments)
	c.Cryptos = nonNil(c.Cryptos)

	for i := range c.Expenses {
		c.Expenses[i].DateISO, c.Expenses[i].Date = fillDates(c.Expenses[i].DateISO, c.Expenses[i].Date)
	}
	for i := range c.Investments {
		c.Investments[i].DateISO, c.Investments[i].Date = fillDates(c.Investments[i].DateISO, c.Investments[i].Date)
	}
	for i := range c.Cryptos {
		c.Cryptos[i].DateISO, c.Cryptos[i].Date = fillDates(c.Cryptos[i].DateISO, c.Cryptos[i].Date)
	}
}

func fillDates(iso, display string) (string, string) {
	if iso == "" && display != "" {
		if parsed, err := models.ParseDate(display); err == nil {
			iso = parsed
		}
	}
	if display == "" {
		display = models.DisplayDate(iso)
	}
	return iso, display
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type legacyExpense struct {
	ID          int64           `json:"id"`
	Date        string          `json:"data"`
	DateISO     string          `json:"dataISO"`
	Description string          `json:"descricao"`
	Amount      decimal.Decimal `json:"valor"`
	Category    string          `json:"categoria"`
}

type legacyInvestment struct {
	ID            int64           `json:"id"`
	Date          string          `json:"data"`
	DateISO       string          `json:"dataISO"`
	Amount        decimal.Decimal `json:"valor"`
	Profit        decimal.Decimal `json:"lucro"`
	ProfitPercent decimal.Decimal `json:"percentual"`
	Type          string          `json:"tipo"`
	Description   string          `json:"descricao"`
}

var legacyCategories = map[string]models.Category{
	"Lazer":      models.Leisure,
	"Transporte": models.Transport,
	"Saúde":      models.Health,
	"Roupa":      models.Clothing,
	"Outros":     models.Other,
}

func isLegacy(fields map[string]json.RawMessage) bool {
	for _, k := range []string{"expenses", "investments", "cryptoInvestments"} {
		if _, ok := fields[k]; ok {
			return false
		}
	}
	for _, k := range []string{"gastos", "investimentos", "criptoInvestimentos"} {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

func parseLegacy(fields map[string]json.RawMessage) (models.Collections, error) {
	var (
		expenses    []legacyExpense
		investments []legacyInvestment
		cryptos     []legacyInvestment
	)
	if err := decodeField(fields, "gastos", &expenses); err != nil {
		return models.Collections{}, err
	}
	if err := decodeField(fields, "investimentos", &investments); err != nil {
		return models.Collections{}, err
	}
	if err := decodeField(fields, "criptoInvestimentos", &cryptos); err != nil {
		return models.Collections{}, err
	}

	var c models.Collections
	for _, e := range expenses {
		cat, ok := legacyCategories[e.Category]
		if !ok {
			cat = models.Category(e.Category)
		}
		c.Expenses = append(c.Expenses, models.Expense{
			ID:          e.ID,
			DateISO:     e.DateISO,
			Date:        e.Date,
			Description: e.Description,
			Amount:      e.Amount,
			Category:    cat,
		})
	}
	for _, i := range investments {
		c.Investments = append(c.Investments, models.Investment{
			ID:            i.ID,
			DateISO:       i.DateISO,
			Date:          i.Date,
			Amount:        i.Amount,
			Profit:        i.Profit,
			ProfitPercent: i.ProfitPercent,
			Type:          i.Type,
			Description:   i.Description,
		})
	}
	for _, i := range cryptos {
		c.Cryptos = append(c.Cryptos, models.CryptoInvestment{
			ID:            i.ID,
			DateISO:       i.DateISO,
			Date:          i.Date,
			Amount:        i.Amount,
			Profit:        i.Profit,
			ProfitPercent: i.ProfitPercent,
			Type:          i.Type,
		})
	}
	normalize(&c)
	return c, nil
}
