package settings

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	apphttp "fintrack/internal/http"
	"fintrack/internal/services/settings"
	"fintrack/internal/services/storage"
)

var errNoEncryption = errors.New("encryption is only available for file storage")

var (
	kv    storage.KV
	files *storage.Storage // nil unless the file backend is in use
)

// Initialize sets up the settings package with required dependencies
func Initialize(k storage.KV, f *storage.Storage) {
	kv = k
	files = f
}

// RegisterRoutes registers the theme and encryption routes
func RegisterRoutes(r chi.Router) {
	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/theme", handleGetTheme)
		r.Put("/theme", handleSetTheme)

		r.Get("/encryption", handleEncryptionStatus)
		r.Post("/encryption/enable", handleEnableEncryption)
		r.Post("/encryption/disable", handleDisableEncryption)
		r.Post("/unlock", handleUnlock)
		r.Post("/lock", handleLock)
	})
}

type themeResponse struct {
	Theme  string   `json:"theme"`
	Themes []string `json:"themes"`
}

func handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := settings.Theme(r.Context(), kv)
	if err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, themeResponse{Theme: theme, Themes: settings.Themes})
}

func handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := apphttp.DecodeJSON(w, r, &req); err != nil {
		apphttp.BadRequest(w, "invalid request body")
		return
	}

	theme, err := settings.SetTheme(r.Context(), kv, req.Theme)
	if err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, themeResponse{Theme: theme, Themes: settings.Themes})
}

type encryptionStatus struct {
	Available bool `json:"available"`
	Encrypted bool `json:"encrypted"`
	Unlocked  bool `json:"unlocked"`
}

func status() encryptionStatus {
	if files == nil {
		return encryptionStatus{Unlocked: true}
	}
	return encryptionStatus{
		Available: true,
		Encrypted: files.IsEncrypted(),
		Unlocked:  files.IsUnlocked(),
	}
}

func handleEncryptionStatus(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, status())
}

// passwordAction decodes {"password": "..."} and runs fn with it
func passwordAction(fn func(*storage.Storage, string) error, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if files == nil {
			apphttp.BadRequest(w, errNoEncryption.Error())
			return
		}

		var req struct {
			Password string `json:"password"`
		}
		if err := apphttp.DecodeJSON(w, r, &req); err != nil {
			apphttp.BadRequest(w, "invalid request body")
			return
		}

		if err := fn(files, req.Password); err != nil {
			apphttp.ErrorResponse(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().Msg(msg)
		apphttp.WriteJSON(w, http.StatusOK, status())
	}
}

var (
	handleEnableEncryption  = passwordAction((*storage.Storage).EnableEncryption, "encryption enabled")
	handleDisableEncryption = passwordAction((*storage.Storage).DisableEncryption, "encryption disabled")
	handleUnlock            = passwordAction((*storage.Storage).Unlock, "storage unlocked")
)

func handleLock(w http.ResponseWriter, r *http.Request) {
	if files == nil {
		apphttp.BadRequest(w, errNoEncryption.Error())
		return
	}
	if !files.IsEncrypted() {
		apphttp.ErrorResponse(w, r, storage.ErrNotEncrypted)
		return
	}

	files.Lock()
	zerolog.Ctx(r.Context()).Info().Msg("storage locked")
	apphttp.WriteJSON(w, http.StatusOK, status())
}
