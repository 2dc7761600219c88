package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fintrack/internal/config"
	"fintrack/internal/models"
	"fintrack/internal/services/backup"
	"fintrack/internal/services/prices"
	"fintrack/internal/testutil"
)

// quoteServer answers like the public quote API until failing is set
type quoteServer struct {
	*httptest.Server
	failing atomic.Bool
}

func newQuoteServer(t *testing.T) *quoteServer {
	t.Helper()

	qs := &quoteServer{}
	qs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if qs.failing.Load() {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"brl":350000.5},"solana":{"brl":900}}`)
	}))
	t.Cleanup(qs.Close)
	return qs
}

func testConfig(t *testing.T, backend string, quotes *quoteServer) *config.Config {
	t.Helper()

	return &config.Config{
		ListenAddr:     ":0",
		Debug:          true,
		Backend:        backend,
		DataDirectory:  t.TempDir(),
		QuoteURL:       quotes.URL,
		PollInterval:   time.Minute,
		RequestTimeout: 2 * time.Second,
	}
}

// setupTestServer initializes dependencies on an in-memory backend and returns a test server
func setupTestServer(t *testing.T) (*testutil.TestServer, *quoteServer) {
	t.Helper()

	quotes := newQuoteServer(t)
	return startServer(t, testConfig(t, config.BackendMemory, quotes)), quotes
}

func startServer(t *testing.T, c *config.Config) *testutil.TestServer {
	t.Helper()

	if err := SetupDependencies(context.Background(), c, zerolog.Nop()); err != nil {
		t.Fatalf("Failed to setup dependencies: %v", err)
	}
	return testutil.NewTestServer(t, SetupRouter())
}

func addExpense(t *testing.T, ts *testutil.TestServer, date, description, amount, category string) models.Expense {
	t.Helper()

	var e models.Expense
	resp := ts.POSTJSON("/api/expenses", map[string]any{
		"date":        date,
		"description": description,
		"amount":      decimal.RequireFromString(amount),
		"category":    category,
	})
	testutil.AssertResponse(t, resp).Status(http.StatusCreated).JSON(&e)
	return e
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`).
		Matches(`"version":"[^"]+"`)
}

func TestRootRedirect(t *testing.T) {
	ts, _ := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/")).StatusRedirect("/dashboard")
}

func TestDashboard(t *testing.T) {
	ts, _ := setupTestServer(t)
	addExpense(t, ts, "2024-03-05", "Pharmacy", "42.50", "health")

	resp := ts.GET("/dashboard")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeHTML().
		HasClass("theme-dark").
		ContainsAll(
			"Finance tracker",
			"Expenses by category",
			">Pharmacy</td>",
			"R$42,50",
			"/static/plotly.min.js",
		)
}

func TestExpenseLifecycle(t *testing.T) {
	ts, _ := setupTestServer(t)

	e := addExpense(t, ts, "5/3/2024", "Pharmacy", "42.50", "health")
	if e.Category != models.Health || e.Date != "05/03/2024" || e.DateISO != "2024-03-05" {
		t.Fatalf("unexpected expense %+v", e)
	}
	path := fmt.Sprintf("/api/expenses/%d", e.ID)

	var edited models.Expense
	testutil.AssertResponse(t, ts.PUTJSON(path, map[string]any{"amount": 50})).StatusOK().JSON(&edited)
	if !edited.Amount.Equal(decimal.NewFromInt(50)) || edited.Description != "Pharmacy" {
		t.Errorf("edit = %+v, want amount 50 and description kept", edited)
	}

	testutil.AssertResponse(t, ts.DELETE(path)).Status(http.StatusConflict)
	testutil.AssertResponse(t, ts.DELETE(path+"?confirm=yes")).StatusOK().Contains(`"deleted"`)
	testutil.AssertResponse(t, ts.DELETE(path+"?confirm=yes")).Status(http.StatusNoContent)

	testutil.AssertResponse(t, ts.PUTJSON(path, map[string]any{"amount": 1})).Status(http.StatusNotFound)
	testutil.AssertResponse(t, ts.GET("/api/expenses")).StatusOK().Contains("[]")
}

func TestAddValidation(t *testing.T) {
	ts, _ := setupTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing date", `{"description":"x","amount":1,"category":"Other"}`},
		{"bad date", `{"date":"31/02/2024","description":"x","amount":1,"category":"Other"}`},
		{"zero amount", `{"date":"2024-01-01","description":"x","amount":0,"category":"Other"}`},
		{"unknown category", `{"date":"2024-01-01","description":"x","amount":1,"category":"Food"}`},
		{"unknown field", `{"date":"2024-01-01","description":"x","amount":1,"category":"Other","tip":2}`},
		{"not json", `amount=1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertResponse(t, ts.POSTJSON("/api/expenses", tt.body)).
				Status(http.StatusBadRequest).
				Contains(`"error"`)
		})
	}
}

func TestInvestmentProfit(t *testing.T) {
	ts, _ := setupTestServer(t)

	post := func(date, amount string) models.Investment {
		t.Helper()
		var inv models.Investment
		resp := ts.POSTJSON("/api/investments", map[string]any{
			"date":   date,
			"type":   "CDB",
			"amount": decimal.RequireFromString(amount),
		})
		testutil.AssertResponse(t, resp).Status(http.StatusCreated).JSON(&inv)
		return inv
	}

	first := post("2024-01-01", "800")
	if !first.Profit.IsZero() {
		t.Errorf("first snapshot profit = %s, want 0", first.Profit)
	}

	second := post("2024-02-01", "1000")
	if !second.Profit.Equal(decimal.NewFromInt(200)) || !second.ProfitPercent.Equal(decimal.NewFromInt(25)) {
		t.Errorf("second snapshot = %s / %s%%, want 200 / 25%%", second.Profit, second.ProfitPercent)
	}

	var crypto models.CryptoInvestment
	resp := ts.POSTJSON("/api/crypto", map[string]any{"date": "2024-02-01", "type": "BTC", "amount": 550, "profit": 50})
	testutil.AssertResponse(t, resp).Status(http.StatusCreated).JSON(&crypto)
	if !crypto.ProfitPercent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("crypto percent = %s, want 10", crypto.ProfitPercent)
	}

	var summary models.Summary
	testutil.AssertResponse(t, ts.GET("/api/summary")).StatusOK().JSON(&summary)
	if !summary.NetWorth.Equal(decimal.NewFromInt(1550)) {
		t.Errorf("net worth = %s, want 1550", summary.NetWorth)
	}
}

func TestClearCollection(t *testing.T) {
	ts, _ := setupTestServer(t)
	addExpense(t, ts, "2024-01-01", "Bus", "4.40", "transport")

	testutil.AssertResponse(t, ts.DELETE("/api/expenses")).Status(http.StatusConflict)
	testutil.AssertResponse(t, ts.GET("/api/expenses")).Contains("Bus")

	testutil.AssertResponse(t, ts.DELETEWithQuery("/api/expenses", map[string]string{"confirm": "yes"})).StatusOK()
	testutil.AssertResponse(t, ts.GET("/api/expenses")).NotContains("Bus")
}

func TestCharts(t *testing.T) {
	ts, _ := setupTestServer(t)
	addExpense(t, ts, "2024-01-01", "Bus", "4.40", "transport")

	testutil.AssertResponse(t, ts.GET("/api/charts/expenses")).
		StatusOK().
		ContainsAll("Expenses by category", `"labels":["Transport"]`)
	testutil.AssertResponse(t, ts.GET("/api/charts/portfolio")).StatusOK().Contains("Portfolio")
	testutil.AssertResponse(t, ts.GET("/api/charts/unknown")).Status(http.StatusNotFound)
	testutil.AssertResponse(t, ts.GET("/api/charts")).StatusOK().ContainsAll(`"expenses"`, `"portfolio"`)
}

func TestBackupExportAndImport(t *testing.T) {
	ts, _ := setupTestServer(t)
	addExpense(t, ts, "2024-01-01", "Bus", "4.40", "transport")

	resp := ts.GET("/api/backup/export")
	exported := testutil.AssertResponse(t, resp).
		StatusOK().
		Header("Content-Disposition", "fintrack-backup-").
		Body()

	testutil.AssertResponse(t, ts.DELETE("/api/expenses?confirm=yes")).StatusOK()

	var staged backup.Staged
	testutil.AssertResponse(t, ts.POST("/api/backup/import", "application/json", strings.NewReader(exported))).
		Status(http.StatusAccepted).
		JSON(&staged)
	if staged.Token == "" || staged.Counts["expenses"] != 1 {
		t.Fatalf("staged = %+v, want a token and one expense", staged)
	}

	// nothing changes before confirmation
	testutil.AssertResponse(t, ts.GET("/api/expenses")).NotContains("Bus")

	confirm := "/api/backup/import/" + staged.Token + "/confirm"
	testutil.AssertResponse(t, ts.POST(confirm, "", nil)).StatusOK().Contains("Bus")
	testutil.AssertResponse(t, ts.POST(confirm, "", nil)).Status(http.StatusNotFound)
}

func TestBackupImportRejectsInvalid(t *testing.T) {
	ts, _ := setupTestServer(t)

	testutil.AssertResponse(t, ts.POST("/api/backup/import", "application/json", strings.NewReader(`[1,2]`))).
		Status(http.StatusBadRequest)
	testutil.AssertResponse(t, ts.DELETE("/api/backup/import/missing")).Status(http.StatusNotFound)
}

func TestBackupImportLegacyAndDiscard(t *testing.T) {
	ts, _ := setupTestServer(t)

	legacy := `{"gastos":[{"id":1,"data":"01/02/2024","dataISO":"2024-02-01","descricao":"Cinema","valor":30,"categoria":"Lazer"}]}`
	var staged backup.Staged
	testutil.AssertResponse(t, ts.POST("/api/backup/import", "application/json", strings.NewReader(legacy))).
		Status(http.StatusAccepted).
		JSON(&staged)
	if staged.Counts["expenses"] != 1 {
		t.Fatalf("staged counts = %v, want one expense", staged.Counts)
	}

	testutil.AssertResponse(t, ts.DELETE("/api/backup/import/"+staged.Token)).Status(http.StatusNoContent)
	testutil.AssertResponse(t, ts.POST("/api/backup/import/"+staged.Token+"/confirm", "", nil)).
		Status(http.StatusNotFound)
}

func TestClearAllNeedsBothConfirmations(t *testing.T) {
	ts, _ := setupTestServer(t)
	addExpense(t, ts, "2024-01-01", "Bus", "4.40", "transport")

	testutil.AssertResponse(t, ts.POST("/api/backup/clear?confirm=yes", "", nil)).Status(http.StatusConflict)
	testutil.AssertResponse(t, ts.GET("/api/expenses")).Contains("Bus")

	testutil.AssertResponse(t, ts.POST("/api/backup/clear?confirm=yes&confirm_again=yes", "", nil)).
		Status(http.StatusNoContent)
	testutil.AssertResponse(t, ts.GET("/api/summary")).Contains(`"expenseCount":0`)
}

func TestTheme(t *testing.T) {
	ts, _ := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/api/settings/theme")).StatusOK().Contains(`"theme":"dark"`)
	testutil.AssertResponse(t, ts.PUTJSON("/api/settings/theme", map[string]string{"theme": "Vibrant"})).
		StatusOK().
		Contains(`"theme":"vibrant"`)
	testutil.AssertResponse(t, ts.PUTJSON("/api/settings/theme", map[string]string{"theme": "neon"})).
		Status(http.StatusBadRequest)

	testutil.AssertResponse(t, ts.GET("/dashboard")).StatusOK().HasClass("theme-vibrant")
}

func TestPrices(t *testing.T) {
	ts, quotes := setupTestServer(t)

	var state prices.State
	testutil.AssertResponse(t, ts.GET("/api/prices")).StatusOK().JSON(&state)
	if len(state.Quotes) != 2 || state.Quotes[0].Text != "-" {
		t.Fatalf("initial board = %+v", state)
	}

	testutil.AssertResponse(t, ts.POST("/api/prices/refresh", "", nil)).
		StatusOK().
		ContainsAll("R$350.000,50", "R$900,00", "Atualizado: ")

	quotes.failing.Store(true)
	testutil.AssertResponse(t, ts.POST("/api/prices/refresh", "", nil)).JSON(&state)
	for _, q := range state.Quotes {
		if q.Text != prices.ErrorMarker || !q.Error {
			t.Errorf("quote %s = %q after a failed fetch, want %q", q.ID, q.Text, prices.ErrorMarker)
		}
	}
	if !strings.HasPrefix(state.Updated, "Atualizado: ") {
		t.Errorf("Updated = %q, want the last successful time kept", state.Updated)
	}
}

func TestEncryptionNeedsFileStorage(t *testing.T) {
	ts, _ := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/api/settings/encryption")).StatusOK().Contains(`"available":false`)
	testutil.AssertResponse(t, ts.POST("/api/settings/lock", "", nil)).Status(http.StatusBadRequest)
}

func TestEncryptedFileStorage(t *testing.T) {
	quotes := newQuoteServer(t)
	ts := startServer(t, testConfig(t, config.BackendFile, quotes))
	addExpense(t, ts, "2024-01-01", "Bus", "4.40", "transport")

	testutil.AssertResponse(t, ts.POSTJSON("/api/settings/encryption/enable", map[string]string{"password": "short"})).
		Status(http.StatusBadRequest)
	testutil.AssertResponse(t, ts.POSTJSON("/api/settings/encryption/enable", map[string]string{"password": "correct horse"})).
		StatusOK().
		Contains(`"encrypted":true`)

	testutil.AssertResponse(t, ts.POST("/api/settings/lock", "", nil)).StatusOK().Contains(`"unlocked":false`)

	resp := ts.POSTJSON("/api/expenses", map[string]any{"date": "2024-01-02", "description": "Taxi", "amount": 20, "category": "transport"})
	testutil.AssertResponse(t, resp).Status(http.StatusLocked)
	testutil.AssertResponse(t, ts.GET("/api/expenses")).NotContains("Taxi")

	testutil.AssertResponse(t, ts.POSTJSON("/api/settings/unlock", map[string]string{"password": "wrong password"})).
		Status(http.StatusUnauthorized)
	testutil.AssertResponse(t, ts.POSTJSON("/api/settings/unlock", map[string]string{"password": "correct horse"})).
		StatusOK()

	addExpense(t, ts, "2024-01-02", "Taxi", "20", "transport")
}

func TestLockedStorageRefusesToStart(t *testing.T) {
	quotes := newQuoteServer(t)
	c := testConfig(t, config.BackendFile, quotes)

	if err := SetupDependencies(context.Background(), c, zerolog.Nop()); err != nil {
		t.Fatalf("SetupDependencies() error = %v", err)
	}
	if err := backend.Files.EnableEncryption("correct horse"); err != nil {
		t.Fatalf("EnableEncryption() error = %v", err)
	}

	if err := SetupDependencies(context.Background(), c, zerolog.Nop()); err == nil {
		t.Error("SetupDependencies() on a locked store should fail")
	}

	c.Password = "correct horse"
	if err := SetupDependencies(context.Background(), c, zerolog.Nop()); err != nil {
		t.Errorf("SetupDependencies() with password error = %v", err)
	}
}

func TestPlotlyServedFromCache(t *testing.T) {
	quotes := newQuoteServer(t)
	c := testConfig(t, config.BackendMemory, quotes)

	cacheDir := filepath.Join(c.DataDirectory, "cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, "plotly.min.js"), []byte("window.Plotly={};"), 0644); err != nil {
		t.Fatal(err)
	}

	ts := startServer(t, c)
	testutil.AssertResponse(t, ts.GET("/static/plotly.min.js")).
		StatusOK().
		ContentType("application/javascript").
		Contains("window.Plotly={};")

	if body := testutil.ReadBody(t, ts.GET("/static/plotly.min.js")); body != "window.Plotly={};" {
		t.Errorf("second request body = %q, want the cached file", body)
	}
}
