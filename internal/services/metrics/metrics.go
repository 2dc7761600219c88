package metrics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// Service provides dashboard aggregation
type Service struct{}

// New creates a new metrics service
func New() *Service {
	return &Service{}
}

// Summarize computes the dashboard totals. Investment and crypto value count
// only the most recent snapshot of each type.
func (s *Service) Summarize(expenses []models.Expense, investments []models.Investment, cryptos []models.CryptoInvestment) *models.Summary {
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	invHoldings := LatestByType(investments)
	cryptoHoldings := LatestByType(cryptos)
	invTotal := sumHoldings(invHoldings)
	cryptoTotal := sumHoldings(cryptoHoldings)

	return &models.Summary{
		TotalExpenses:        totalExpenses,
		TotalInvestmentValue: invTotal,
		TotalCryptoValue:     cryptoTotal,
		NetWorth:             invTotal.Add(cryptoTotal),
		ExpenseCount:         len(expenses),
		InvestmentCount:      len(investments),
		CryptoCount:          len(cryptos),
		InvestmentHoldings:   invHoldings,
		CryptoHoldings:       cryptoHoldings,
	}
}

// LatestByType returns, for every type in order of first appearance, the entry
// with the greatest date. Ties keep the entry that comes first.
func LatestByType[T models.Snapshot](entries []T) []models.Holding {
	holdings := []models.Holding{}
	index := make(map[string]int)

	for _, e := range entries {
		i, seen := index[e.SeriesType()]
		if !seen {
			index[e.SeriesType()] = len(holdings)
			holdings = append(holdings, models.Holding{
				Type:    e.SeriesType(),
				DateISO: e.EntryDate(),
				Amount:  e.Balance(),
				Entries: 1,
			})
			continue
		}

		h := &holdings[i]
		h.Entries++
		if e.EntryDate() > h.DateISO {
			h.DateISO = e.EntryDate()
			h.Amount = e.Balance()
		}
	}
	return holdings
}

func sumHoldings(holdings []models.Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.Amount)
	}
	return total
}

// CategoryTotals groups expense amounts by category in order of first appearance
func (s *Service) CategoryTotals(expenses []models.Expense) []models.CategorySummary {
	totals := []models.CategorySummary{}
	index := make(map[models.Category]int)

	for _, e := range expenses {
		i, seen := index[e.Category]
		if !seen {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, models.CategorySummary{Category: e.Category, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(e.Amount)
		totals[i].Count++
	}
	return totals
}

// Charts projects the collections into the expense-by-category and portfolio charts
func (s *Service) Charts(expenses []models.Expense, investments []models.Investment, cryptos []models.CryptoInvestment) *models.Charts {
	return &models.Charts{
		Expenses:  s.ExpenseChart(expenses),
		Portfolio: s.PortfolioChart(investments, cryptos),
	}
}

// ExpenseChart is a bar chart of expense totals per category
func (s *Service) ExpenseChart(expenses []models.Expense) models.ChartResponse {
	series := models.ChartData{
		Type:   "bar",
		Name:   "Expenses",
		Labels: []string{},
		Values: []decimal.Decimal{},
	}
	for _, c := range s.CategoryTotals(expenses) {
		series.Labels = append(series.Labels, string(c.Category))
		series.Values = append(series.Values, c.Amount)
	}

	return models.ChartResponse{
		Data:   []models.ChartData{series},
		Layout: models.ChartLayout{Title: "Expenses by category"},
	}
}

// PortfolioChart plots investment and crypto amounts in collection order.
// Both series share the #1..#n labels of the investment series.
func (s *Service) PortfolioChart(investments []models.Investment, cryptos []models.CryptoInvestment) models.ChartResponse {
	labels := make([]string, len(investments))
	for i := range investments {
		labels[i] = fmt.Sprintf("#%d", i+1)
	}

	invValues := make([]decimal.Decimal, len(investments))
	for i, inv := range investments {
		invValues[i] = inv.Amount
	}
	cryptoValues := make([]decimal.Decimal, len(cryptos))
	for i, c := range cryptos {
		cryptoValues[i] = c.Amount
	}

	return models.ChartResponse{
		Data: []models.ChartData{
			{Type: "line", Name: "Investments", Labels: labels, Values: invValues},
			{Type: "line", Name: "Crypto", Labels: labels, Values: cryptoValues},
		},
		Layout: models.ChartLayout{Title: "Portfolio", ShowLegend: true},
	}
}
