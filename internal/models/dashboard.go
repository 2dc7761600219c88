package models

import "github.com/shopspring/decimal"

// Summary contains the headline totals for the dashboard
type Summary struct {
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
	TotalInvestmentValue decimal.Decimal `json:"totalInvestmentValue"`
	TotalCryptoValue     decimal.Decimal `json:"totalCryptoValue"`
	NetWorth             decimal.Decimal `json:"netWorth"` // excludes expenses

	ExpenseCount    int `json:"expenseCount"`
	InvestmentCount int `json:"investmentCount"`
	CryptoCount     int `json:"cryptoCount"`

	// Latest snapshot per type, in order of first appearance
	InvestmentHoldings []Holding `json:"investmentHoldings"`
	CryptoHoldings     []Holding `json:"cryptoHoldings"`
}

// Holding is the most recent snapshot of one type series
type Holding struct {
	Type    string          `json:"type"`
	DateISO string          `json:"dateISO"`
	Amount  decimal.Decimal `json:"amount"`
	Entries int             `json:"entries"`
}

// ChartData represents one chart series
type ChartData struct {
	Type   string            `json:"type"` // bar, line
	Name   string            `json:"name"`
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

// ChartResponse wraps chart series with layout options
type ChartResponse struct {
	Data   []ChartData `json:"data"`
	Layout ChartLayout `json:"layout,omitempty"`
}

// ChartLayout defines layout options
type ChartLayout struct {
	Title      string `json:"title,omitempty"`
	ShowLegend bool   `json:"showlegend,omitempty"`
}

// Charts holds the two dashboard charts
type Charts struct {
	Expenses  ChartResponse `json:"expenses"`
	Portfolio ChartResponse `json:"portfolio"`
}

// CategorySummary is the expense total of one category
type CategorySummary struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}
