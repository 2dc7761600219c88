// Package report renders ledger data as markdown for the terminal and the dashboard page.
package report

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"fintrack/internal/models"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/prices"
)

func money(d decimal.Decimal) string { return currency.Format(d) }

func percent(d decimal.Decimal) string { return currency.FormatPercent(d) }

// cell escapes characters that would break a table row
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "-"
	}
	return s
}

// SummaryMarkdown renders the headline totals and the latest snapshot of each type
func SummaryMarkdown(s *models.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Summary")
	doc.LF()
	doc.Table(md.TableSet{
		Header:    []string{"", "Value"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Rows: [][]string{
			{"Total expenses", money(s.TotalExpenses)},
			{"Investments", money(s.TotalInvestmentValue)},
			{"Crypto", money(s.TotalCryptoValue)},
			{md.Bold("Net worth"), md.Bold(money(s.NetWorth))},
		},
	})

	if len(s.InvestmentHoldings) > 0 {
		doc.H3("Investment holdings")
		doc.LF()
		doc.Table(holdingsTable(s.InvestmentHoldings))
	}
	if len(s.CryptoHoldings) > 0 {
		doc.H3("Crypto holdings")
		doc.LF()
		doc.Table(holdingsTable(s.CryptoHoldings))
	}

	return doc.String()
}

func holdingsTable(holdings []models.Holding) md.TableSet {
	t := md.TableSet{
		Header:    []string{"Type", "Latest", "Amount", "Entries"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
	}
	for _, h := range holdings {
		t.Rows = append(t.Rows, []string{
			cell(h.Type),
			models.DisplayDate(h.DateISO),
			money(h.Amount),
			fmt.Sprint(h.Entries),
		})
	}
	return t
}

// ExpensesMarkdown renders the expense collection as a table
func ExpensesMarkdown(expenses []models.Expense) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Expenses")
	doc.LF()
	if len(expenses) == 0 {
		doc.PlainText(md.Italic("No expenses recorded."))
		return doc.String()
	}

	t := md.TableSet{
		Header:    []string{"ID", "Date", "Description", "Category", "Amount"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
	}
	for _, e := range expenses {
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(e.ID),
			e.Date,
			cell(e.Description),
			string(e.Category),
			money(e.Amount),
		})
	}
	doc.Table(t)
	return doc.String()
}

// InvestmentsMarkdown renders the investment collection as a table
func InvestmentsMarkdown(investments []models.Investment) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Investments")
	doc.LF()
	if len(investments) == 0 {
		doc.PlainText(md.Italic("No investments recorded."))
		return doc.String()
	}

	t := md.TableSet{
		Header:    []string{"ID", "Date", "Type", "Amount", "Profit", "%", "Description"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
	}
	for _, i := range investments {
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(i.ID),
			i.Date,
			cell(i.Type),
			money(i.Amount),
			money(i.Profit),
			percent(i.ProfitPercent),
			cell(i.Description),
		})
	}
	doc.Table(t)
	return doc.String()
}

// CryptosMarkdown renders the crypto collection as a table
func CryptosMarkdown(cryptos []models.CryptoInvestment) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Crypto")
	doc.LF()
	if len(cryptos) == 0 {
		doc.PlainText(md.Italic("No crypto recorded."))
		return doc.String()
	}

	t := md.TableSet{
		Header:    []string{"ID", "Date", "Type", "Amount", "Profit", "%"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
	}
	for _, c := range cryptos {
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(c.ID),
			c.Date,
			cell(c.Type),
			money(c.Amount),
			money(c.Profit),
			percent(c.ProfitPercent),
		})
	}
	doc.Table(t)
	return doc.String()
}

// CollectionMarkdown renders one collection
func CollectionMarkdown(kind models.Kind, c models.Collections) string {
	switch kind {
	case models.KindInvestment:
		return InvestmentsMarkdown(c.Investments)
	case models.KindCrypto:
		return CryptosMarkdown(c.Cryptos)
	default:
		return ExpensesMarkdown(c.Expenses)
	}
}

// PricesMarkdown renders the quote board
func PricesMarkdown(s prices.State) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Prices")
	doc.LF()
	t := md.TableSet{
		Header:    []string{"Asset", "Price"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
	}
	for _, q := range s.Quotes {
		t.Rows = append(t.Rows, []string{q.Name, q.Text})
	}
	doc.Table(t)
	if s.Updated != "" {
		doc.PlainText(md.Italic(s.Updated))
	}
	return doc.String()
}

// DashboardMarkdown renders the whole dashboard: summary, category totals, prices and the three collections
func DashboardMarkdown(s *models.Summary, categories []models.CategorySummary, quotes prices.State, c models.Collections) string {
	var b strings.Builder
	b.WriteString("# Finance tracker\n\n")
	b.WriteString(SummaryMarkdown(s))
	b.WriteString("\n\n")

	if len(categories) > 0 {
		var buf bytes.Buffer
		doc := md.NewMarkdown(&buf)
		doc.H2("Expenses by category")
		doc.LF()
		t := md.TableSet{
			Header:    []string{"Category", "Entries", "Total"},
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		}
		for _, cat := range categories {
			t.Rows = append(t.Rows, []string{string(cat.Category), fmt.Sprint(cat.Count), money(cat.Amount)})
		}
		doc.Table(t)
		b.WriteString(doc.String())
		b.WriteString("\n\n")
	}

	b.WriteString(PricesMarkdown(quotes))
	b.WriteString("\n\n")
	b.WriteString(ExpensesMarkdown(c.Expenses))
	b.WriteString("\n\n")
	b.WriteString(InvestmentsMarkdown(c.Investments))
	b.WriteString("\n\n")
	b.WriteString(CryptosMarkdown(c.Cryptos))
	b.WriteString("\n")
	return b.String()
}

var converter = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts markdown produced by this package to an HTML fragment
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
