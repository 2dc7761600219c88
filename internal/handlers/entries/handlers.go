package entries

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	apphttp "fintrack/internal/http"
	"fintrack/internal/models"
	"fintrack/internal/services/ledger"
)

var store *ledger.Store

// Initialize sets up the entries package with required dependencies
func Initialize(s *ledger.Store) {
	store = s
}

// collections maps the URL segment of each collection to its kind
var collections = map[string]models.Kind{
	"expenses":    models.KindExpense,
	"investments": models.KindInvestment,
	"crypto":      models.KindCrypto,
}

// RegisterRoutes registers the CRUD routes of the three collections
func RegisterRoutes(r chi.Router) {
	for segment, kind := range collections {
		r.Route("/api/"+segment, func(r chi.Router) {
			r.Get("/", handleList(kind))
			r.Post("/", handleAdd(kind))
			r.Delete("/", handleClear(kind))
			r.Put("/{id}", handleEdit(kind))
			r.Delete("/{id}", handleDelete(kind))
		})
	}
}

func handleList(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch kind {
		case models.KindExpense:
			apphttp.WriteJSON(w, http.StatusOK, orEmpty(store.Expenses()))
		case models.KindInvestment:
			apphttp.WriteJSON(w, http.StatusOK, orEmpty(store.Investments()))
		case models.KindCrypto:
			apphttp.WriteJSON(w, http.StatusOK, orEmpty(store.Cryptos()))
		}
	}
}

// orEmpty keeps empty collections encoding as [] rather than null
func orEmpty[T any](entries []T) []T {
	if entries == nil {
		return []T{}
	}
	return entries
}

func handleAdd(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			entry any
			err   error
		)

		switch kind {
		case models.KindExpense:
			var in ledger.ExpenseInput
			if err := apphttp.DecodeJSON(w, r, &in); err != nil {
				apphttp.BadRequest(w, "invalid expense: "+err.Error())
				return
			}
			entry, err = store.AddExpense(r.Context(), in)
		case models.KindInvestment:
			var in ledger.InvestmentInput
			if err := apphttp.DecodeJSON(w, r, &in); err != nil {
				apphttp.BadRequest(w, "invalid investment: "+err.Error())
				return
			}
			entry, err = store.AddInvestment(r.Context(), in)
		case models.KindCrypto:
			var in ledger.CryptoInput
			if err := apphttp.DecodeJSON(w, r, &in); err != nil {
				apphttp.BadRequest(w, "invalid crypto entry: "+err.Error())
				return
			}
			entry, err = store.AddCrypto(r.Context(), in)
		}

		if err != nil {
			apphttp.ErrorResponse(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).Info().Str("kind", string(kind)).Msg("entry added")
		apphttp.WriteJSON(w, http.StatusCreated, entry)
	}
}

func handleEdit(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := apphttp.IDParam(r)
		if err != nil {
			apphttp.BadRequest(w, "invalid id")
			return
		}

		var entry any
		switch kind {
		case models.KindExpense:
			var p ledger.ExpensePatch
			if err := apphttp.DecodeJSON(w, r, &p); err != nil {
				apphttp.BadRequest(w, "invalid expense: "+err.Error())
				return
			}
			entry, err = store.EditExpense(r.Context(), id, p)
		case models.KindInvestment:
			var p ledger.InvestmentPatch
			if err := apphttp.DecodeJSON(w, r, &p); err != nil {
				apphttp.BadRequest(w, "invalid investment: "+err.Error())
				return
			}
			entry, err = store.EditInvestment(r.Context(), id, p)
		case models.KindCrypto:
			var p ledger.CryptoPatch
			if err := apphttp.DecodeJSON(w, r, &p); err != nil {
				apphttp.BadRequest(w, "invalid crypto entry: "+err.Error())
				return
			}
			entry, err = store.EditCrypto(r.Context(), id, p)
		}

		if err != nil {
			apphttp.ErrorResponse(w, r, err)
			return
		}
		apphttp.WriteJSON(w, http.StatusOK, entry)
	}
}

func handleDelete(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := apphttp.IDParam(r)
		if err != nil {
			apphttp.BadRequest(w, "invalid id")
			return
		}

		deleted, err := store.Delete(r.Context(), kind, id, apphttp.QueryConfirmer(r, "confirm"))
		if err != nil {
			apphttp.ErrorResponse(w, r, err)
			return
		}
		if !deleted {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		apphttp.WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})
	}
}

func handleClear(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(r.Context(), kind, apphttp.QueryConfirmer(r, "confirm")); err != nil {
			apphttp.ErrorResponse(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).Info().Str("kind", string(kind)).Msg("collection cleared")
		apphttp.WriteJSON(w, http.StatusOK, map[string]any{"cleared": kind})
	}
}
