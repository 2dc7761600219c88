package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// ExpenseInput is the user-supplied part of a new expense
type ExpenseInput struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

// InvestmentInput is the user-supplied part of a new investment snapshot
type InvestmentInput struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// CryptoInput is the user-supplied part of a new crypto snapshot. Profit defaults to zero.
type CryptoInput struct {
	Date   string          `json:"date"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Profit decimal.Decimal `json:"profit"`
}

// ExpensePatch holds the fields of an expense edit; nil fields are kept
type ExpensePatch struct {
	Date        *string          `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// InvestmentPatch holds the fields of an investment edit. The type cannot change.
type InvestmentPatch struct {
	Date        *string          `json:"date,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
}

// CryptoPatch holds the fields of a crypto edit. The type cannot change.
type CryptoPatch struct {
	Date   *string          `json:"date,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Profit *decimal.Decimal `json:"profit,omitempty"`
}

func requireDate(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: date", ErrMissingField)
	}
	iso, err := models.ParseDate(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return iso, nil
}

func requireText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return s, nil
}

func requireAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, d.String())
	}
	return nil
}

func requireCategory(s string) (models.Category, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: category", ErrMissingField)
	}
	c, ok := models.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (in ExpenseInput) validate() (models.Expense, error) {
	iso, err := requireDate(in.Date)
	if err != nil {
		return models.Expense{}, err
	}
	desc, err := requireText("description", in.Description)
	if err != nil {
		return models.Expense{}, err
	}
	if err := requireAmount(in.Amount); err != nil {
		return models.Expense{}, err
	}
	cat, err := requireCategory(in.Category)
	if err != nil {
		return models.Expense{}, err
	}
	return models.Expense{
		DateISO:     iso,
		Date:        models.DisplayDate(iso),
		Description: desc,
		Amount:      in.Amount,
		Category:    cat,
	}, nil
}

func (in InvestmentInput) validate() (models.Investment, error) {
	iso, err := requireDate(in.Date)
	if err != nil {
		return models.Investment{}, err
	}
	typ, err := requireText("type", in.Type)
	if err != nil {
		return models.Investment{}, err
	}
	if err := requireAmount(in.Amount); err != nil {
		return models.Investment{}, err
	}
	return models.Investment{
		DateISO:     iso,
		Date:        models.DisplayDate(iso),
		Amount:      in.Amount,
		Type:        typ,
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func (in CryptoInput) validate() (models.CryptoInvestment, error) {
	iso, err := requireDate(in.Date)
	if err != nil {
		return models.CryptoInvestment{}, err
	}
	typ, err := requireText("type", in.Type)
	if err != nil {
		return models.CryptoInvestment{}, err
	}
	if err := requireAmount(in.Amount); err != nil {
		return models.CryptoInvestment{}, err
	}
	return models.CryptoInvestment{
		DateISO: iso,
		Date:    models.DisplayDate(iso),
		Amount:  in.Amount,
		Profit:  in.Profit,
		Type:    typ,
	}, nil
}

// patchDate returns the new ISO date, or the current one when s is absent or unparseable
func patchDate(s *string, current string) string {
	if s == nil {
		return current
	}
	iso, err := models.ParseDate(*s)
	if err != nil {
		return current
	}
	return iso
}

// patchText returns the trimmed new text, or the current one when s is absent or blank
func patchText(s *string, current string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return current
	}
	return strings.TrimSpace(*s)
}

func patchAmount(d *decimal.Decimal, current decimal.Decimal) (decimal.Decimal, error) {
	if d == nil {
		return current, nil
	}
	if err := requireAmount(*d); err != nil {
		return current, err
	}
	return *d, nil
}
