package backup

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

func TestFileName(t *testing.T) {
	now := time.Date(2024, 7, 9, 23, 15, 0, 0, time.UTC)
	if got := FileName(now); got != "fintrack-backup-2024-07-09.json" {
		t.Errorf("FileName() = %q, want %q", got, "fintrack-backup-2024-07-09.json")
	}
}

func TestExportParseRoundtrip(t *testing.T) {
	c := models.Collections{
		Expenses: []models.Expense{
			{ID: 1, DateISO: "2024-01-02", Date: "02/01/2024", Description: "Pharmacy", Amount: decimal.RequireFromString("12.30"), Category: models.Health},
		},
		Investments: []models.Investment{
			{ID: 2, DateISO: "2024-01-03", Date: "03/01/2024", Amount: decimal.RequireFromString("1000"), Profit: decimal.RequireFromString("200"), ProfitPercent: decimal.RequireFromString("25"), Type: "CDB"},
		},
	}
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	data, err := Export(c, now)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("exported document is not JSON: %v", err)
	}
	if doc["exportDate"] != "2024-01-05T10:00:00Z" {
		t.Errorf("exportDate = %v, want 2024-01-05T10:00:00Z", doc["exportDate"])
	}
	if cryptos, ok := doc["cryptoInvestments"].([]any); !ok || len(cryptos) != 0 {
		t.Errorf("cryptoInvestments = %v, want empty array", doc["cryptoInvestments"])
	}
	if !strings.Contains(string(data), `"amount": 12.3`) {
		t.Errorf("amounts should be JSON numbers:\n%s", data)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Expenses) != 1 || got.Expenses[0].Category != models.Health {
		t.Errorf("expenses = %+v", got.Expenses)
	}
	if len(got.Investments) != 1 || !got.Investments[0].Profit.Equal(decimal.RequireFromString("200")) {
		t.Errorf("investments = %+v", got.Investments)
	}
}

func TestParseMissingCollections(t *testing.T) {
	got, err := Parse([]byte(`{"expenses":[{"id":1,"dateISO":"2024-01-01","description":"x","amount":5,"category":"Other"}]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Investments == nil || len(got.Investments) != 0 {
		t.Errorf("Investments = %v, want empty collection", got.Investments)
	}
	if got.Cryptos == nil || len(got.Cryptos) != 0 {
		t.Errorf("Cryptos = %v, want empty collection", got.Cryptos)
	}
	if got.Expenses[0].Date != "01/01/2024" {
		t.Errorf("display date = %q, want 01/01/2024", got.Expenses[0].Date)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `hello`},
		{"array", `[1,2,3]`},
		{"null", `null`},
		{"wrong collection type", `{"investments": "many"}`},
		{"wrong field type", `{"expenses": [{"amount": "lots"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, ErrInvalidBackup) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidBackup", tt.data, err)
			}
		})
	}
}

func TestParseLegacy(t *testing.T) {
	legacy := `{
		"gastos": [
			{"id": 1700000000001, "data": "05/01/2024", "dataISO": "2024-01-05", "descricao": "Uber", "valor": 23.5, "categoria": "Transporte"},
			{"id": 1700000000002, "data": "06/01/2024", "dataISO": "2024-01-06", "descricao": "Consulta", "valor": 150, "categoria": "Saúde"}
		],
		"investimentos": [
			{"id": 1700000000003, "data": "10/01/2024", "dataISO": "2024-01-10", "valor": 1000, "lucro": 200, "percentual": 25, "tipo": "CDB", "descricao": "Banco"}
		],
		"exportDate": "2024-01-11T12:00:00.000Z"
	}`

	got, err := Parse([]byte(legacy))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(got.Expenses) != 2 {
		t.Fatalf("expenses = %d, want 2", len(got.Expenses))
	}
	if got.Expenses[0].Category != models.Transport || got.Expenses[1].Category != models.Health {
		t.Errorf("categories = %s, %s; want Transport, Health", got.Expenses[0].Category, got.Expenses[1].Category)
	}
	if got.Expenses[0].Description != "Uber" || !got.Expenses[0].Amount.Equal(decimal.RequireFromString("23.5")) {
		t.Errorf("first expense = %+v", got.Expenses[0])
	}

	inv := got.Investments[0]
	if inv.Type != "CDB" || inv.Description != "Banco" || !inv.ProfitPercent.Equal(decimal.NewFromInt(25)) {
		t.Errorf("investment = %+v", inv)
	}
	if len(got.Cryptos) != 0 {
		t.Errorf("cryptos = %d, want 0", len(got.Cryptos))
	}
}

func TestPending(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPending(func() time.Time { return now })

	c := models.Collections{Expenses: []models.Expense{{ID: 1}}}
	staged := p.Stage(c)
	if staged.Token == "" {
		t.Fatal("Stage() returned an empty token")
	}
	if staged.Counts["expenses"] != 1 {
		t.Errorf("Counts = %v, want one expense", staged.Counts)
	}

	got, err := p.Take(staged.Token)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if len(got.Expenses) != 1 {
		t.Errorf("Take() expenses = %d, want 1", len(got.Expenses))
	}
	if _, err := p.Take(staged.Token); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("second Take() error = %v, want ErrUnknownToken", err)
	}
}

func TestPendingExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPending(func() time.Time { return now })

	staged := p.Stage(models.Collections{})
	other := p.Stage(models.Collections{})

	if !p.Discard(other.Token) {
		t.Error("Discard() of a live token should report true")
	}
	if p.Discard(other.Token) {
		t.Error("Discard() of a discarded token should report false")
	}

	now = now.Add(PendingTTL)
	if _, err := p.Take(staged.Token); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Take() after expiry error = %v, want ErrUnknownToken", err)
	}
	if n := p.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}
