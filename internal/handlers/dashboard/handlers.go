package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	apphttp "fintrack/internal/http"
	"fintrack/internal/report"
	"fintrack/internal/services/ledger"
	"fintrack/internal/services/metrics"
	"fintrack/internal/services/prices"
	"fintrack/internal/services/settings"
	"fintrack/internal/services/storage"
	"fintrack/internal/templates"
	"fintrack/internal/version"
)

var (
	store      *ledger.Store
	metricsSvc *metrics.Service
	board      *prices.Board
	kv         storage.KV
	renderer   *templates.Renderer
)

// Initialize sets up the dashboard package with required dependencies
func Initialize(s *ledger.Store, m *metrics.Service, b *prices.Board, k storage.KV, r *templates.Renderer) {
	store = s
	metricsSvc = m
	board = b
	kv = k
	renderer = r
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
	})
	r.Get("/dashboard", handleDashboard)
	r.Get("/api/summary", handleSummary)
	r.Get("/api/charts", handleCharts)
	r.Get("/api/charts/{chart}", handleChart)
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := store.Snapshot()
	summary := metricsSvc.Summarize(snap.Expenses, snap.Investments, snap.Cryptos)
	categories := metricsSvc.CategoryTotals(snap.Expenses)

	body, err := report.HTML(report.DashboardMarkdown(summary, categories, board.State(), snap))
	if err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}

	theme, err := settings.Theme(r.Context(), kv)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("could not read theme, using default")
		theme = settings.DefaultTheme
	}

	renderer.Render(w, "page", templates.Page{
		Title:    "Dashboard",
		Theme:    theme,
		Version:  version.Version,
		NetWorth: summary.NetWorth,
		Body:     body,
		Charts:   metricsSvc.Charts(snap.Expenses, snap.Investments, snap.Cryptos),
	})
}

func handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := store.Snapshot()
	apphttp.WriteJSON(w, http.StatusOK, metricsSvc.Summarize(snap.Expenses, snap.Investments, snap.Cryptos))
}

func handleCharts(w http.ResponseWriter, r *http.Request) {
	snap := store.Snapshot()
	apphttp.WriteJSON(w, http.StatusOK, metricsSvc.Charts(snap.Expenses, snap.Investments, snap.Cryptos))
}

func handleChart(w http.ResponseWriter, r *http.Request) {
	snap := store.Snapshot()

	switch chi.URLParam(r, "chart") {
	case "expenses":
		apphttp.WriteJSON(w, http.StatusOK, metricsSvc.ExpenseChart(snap.Expenses))
	case "portfolio":
		apphttp.WriteJSON(w, http.StatusOK, metricsSvc.PortfolioChart(snap.Investments, snap.Cryptos))
	default:
		http.Error(w, "Unknown chart type", http.StatusNotFound)
	}
}
