package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Keep amounts as JSON numbers so backups stay readable by other tools.
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind identifies one of the three ledger collections
type Kind string

const (
	KindExpense    Kind = "expenses"
	KindInvestment Kind = "investments"
	KindCrypto     Kind = "cryptoInvestments"
)

// Kinds lists every collection in persistence order
var Kinds = []Kind{KindExpense, KindInvestment, KindCrypto}

// ParseKind accepts the collection key or a short alias
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expenses", "expense":
		return KindExpense, nil
	case "investments", "investment", "invest":
		return KindInvestment, nil
	case "cryptoinvestments", "crypto", "cryptos":
		return KindCrypto, nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Category is the enumerated expense category
type Category string

const (
	Leisure   Category = "Leisure"
	Transport Category = "Transport"
	Health    Category = "Health"
	Clothing  Category = "Clothing"
	Other     Category = "Other"
)

// Categories lists the valid expense categories in display order
var Categories = []Category{Leisure, Transport, Health, Clothing, Other}

// ParseCategory matches a category name case-insensitively
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Entry is implemented by every ledger record
type Entry interface {
	EntryID() int64
	EntryDate() string
}

// Snapshot is a balance entry belonging to a type series
type Snapshot interface {
	Entry
	SeriesType() string
	Balance() decimal.Decimal
}

// Expense is a single spending record
type Expense struct {
	ID          int64           `json:"id"`
	DateISO     string          `json:"dateISO"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
}

func (e Expense) EntryID() int64    { return e.ID }
func (e Expense) EntryDate() string { return e.DateISO }

// Investment is a brokerage balance snapshot. Profit and ProfitPercent are
// computed when the entry is written and are not refreshed afterwards.
type Investment struct {
	ID            int64           `json:"id"`
	DateISO       string          `json:"dateISO"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent decimal.Decimal `json:"profitPercent"`
	Type          string          `json:"type"`
	Description   string          `json:"description"`
}

func (i Investment) EntryID() int64           { return i.ID }
func (i Investment) EntryDate() string        { return i.DateISO }
func (i Investment) SeriesType() string       { return i.Type }
func (i Investment) Balance() decimal.Decimal { return i.Amount }

// CryptoInvestment is a crypto balance snapshot whose profit is entered by hand
type CryptoInvestment struct {
	ID            int64           `json:"id"`
	DateISO       string          `json:"dateISO"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent decimal.Decimal `json:"profitPercent"`
	Type          string          `json:"type"`
}

func (c CryptoInvestment) EntryID() int64           { return c.ID }
func (c CryptoInvestment) EntryDate() string        { return c.DateISO }
func (c CryptoInvestment) SeriesType() string       { return c.Type }
func (c CryptoInvestment) Balance() decimal.Decimal { return c.Amount }

const (
	// ISODateLayout is the canonical stored date form
	ISODateLayout = "2006-01-02"
	// DisplayDateLayout is the pt-BR display form
	DisplayDateLayout = "02/01/2006"
)

// ParseDate accepts either YYYY-MM-DD or DD/MM/YYYY and returns the ISO form
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	if t, err := time.Parse(ISODateLayout, s); err == nil {
		return t.Format(ISODateLayout), nil
	}

	// DD/MM/YYYY with optional zero padding
	parts := strings.Split(s, "/")
	if len(parts) == 3 {
		day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD == nil && errM == nil && errY == nil {
			padded := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			if t, err := time.Parse(ISODateLayout, padded); err == nil {
				return t.Format(ISODateLayout), nil
			}
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// DisplayDate renders an ISO date as DD/MM/YYYY. Unparseable input is returned unchanged.
func DisplayDate(iso string) string {
	t, err := time.Parse(ISODateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(DisplayDateLayout)
}

// Collections is a full copy of the three ledger collections
type Collections struct {
	Expenses    []Expense          `json:"expenses"`
	Investments []Investment       `json:"investments"`
	Cryptos     []CryptoInvestment `json:"cryptoInvestments"`
}

// Len returns the number of records in one collection
func (c Collections) Len(kind Kind) int {
	switch kind {
	case KindExpense:
		return len(c.Expenses)
	case KindInvestment:
		return len(c.Investments)
	case KindCrypto:
		return len(c.Cryptos)
	}
	return 0
}
