// Package http holds the response helpers shared by every handler package.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"fintrack/internal/services/backup"
	"fintrack/internal/services/ledger"
	"fintrack/internal/services/settings"
	"fintrack/internal/services/storage"
)

// MaxBodyBytes bounds request bodies, backups included
const MaxBodyBytes = 10 << 20

// WriteJSON sends v as a JSON response
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a JSON request body into v
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// StatusFor maps domain errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrMissingField),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidCategory),
		errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, backup.ErrInvalidBackup),
		errors.Is(err, settings.ErrUnknownTheme),
		errors.Is(err, storage.ErrPasswordTooShort),
		errors.Is(err, storage.ErrAlreadyEncrypted),
		errors.Is(err, storage.ErrNotEncrypted):
		return http.StatusBadRequest
	case errors.Is(err, backup.ErrUnknownToken):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrIncorrectPassword):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrLocked):
		return http.StatusLocked
	}
	return http.StatusInternalServerError
}

// ErrorResponse sends err as a JSON error with the status StatusFor picks
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}

// BadRequest sends a 400 with message
func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

// Confirmed reports whether the named query parameter is "yes" or "true"
func Confirmed(r *http.Request, param string) bool {
	switch r.URL.Query().Get(param) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// QueryConfirmer approves prompts in order from query parameters, one parameter per prompt.
// A request with ?confirm=yes&confirm_again=yes can pass a two-step confirmation.
func QueryConfirmer(r *http.Request, params ...string) ledger.Confirmer {
	asked := 0
	return ledger.ConfirmFunc(func(string) bool {
		if asked >= len(params) {
			return false
		}
		ok := Confirmed(r, params[asked])
		asked++
		return ok
	})
}

// IDParam parses the {id} route parameter
func IDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// RequestLogger logs every request through zerolog and stores the logger in the request context
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				reqLogger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))
		})
	}
}
