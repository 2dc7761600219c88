package prices

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apphttp "fintrack/internal/http"
	"fintrack/internal/services/prices"
)

var (
	board  *prices.Board
	poller *prices.Poller
)

// Initialize sets up the prices package with required dependencies
func Initialize(b *prices.Board, p *prices.Poller) {
	board = b
	poller = p
}

// RegisterRoutes registers the quote routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/prices", handleState)
	r.Post("/api/prices/refresh", handleRefresh)
}

func handleState(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, board.State())
}

// handleRefresh fetches quotes now instead of waiting for the next tick
func handleRefresh(w http.ResponseWriter, r *http.Request) {
	poller.Refresh(r.Context())
	apphttp.WriteJSON(w, http.StatusOK, board.State())
}
