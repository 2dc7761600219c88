package backup

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/services/backup"
	"fintrack/internal/services/ledger"
	"fintrack/internal/version"
)

// PlotlyURL is where the chart library is fetched from on first use
var PlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var (
	cfg     *config.Config
	store   *ledger.Store
	pending *backup.Pending
	now     = time.Now
)

// Initialize sets up the backup package with required dependencies
func Initialize(c *config.Config, s *ledger.Store, p *backup.Pending) {
	cfg = c
	store = s
	pending = p
}

// RegisterRoutes registers the health, backup and plotly routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/health", HandleHealth)
	r.Get("/static/plotly.min.js", HandlePlotly)

	r.Route("/api/backup", func(r chi.Router) {
		r.Get("/export", HandleExport)
		r.Post("/import", HandleImport)
		r.Post("/import/{token}/confirm", HandleConfirmImport)
		r.Delete("/import/{token}", HandleDiscardImport)
		r.Post("/clear", HandleClearAll)
	})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}

// HandleExport downloads every collection as one JSON document
func HandleExport(w http.ResponseWriter, r *http.Request) {
	at := now()
	data, err := backup.Export(store.Snapshot(), at)
	if err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backup.FileName(at)))
	w.Write(data)
}

// HandleImport parses an uploaded backup and stages it. Nothing is replaced
// until the returned token is confirmed.
func HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r)
	if err != nil {
		apphttp.BadRequest(w, err.Error())
		return
	}

	c, err := backup.Parse(data)
	if err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}

	staged := pending.Stage(c)
	zerolog.Ctx(r.Context()).Info().Str("token", staged.Token).Interface("counts", staged.Counts).Msg("backup staged for import")
	apphttp.WriteJSON(w, http.StatusAccepted, staged)
}

// readUpload accepts either a multipart form with a "file" field or a raw JSON body
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, apphttp.MaxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(apphttp.MaxBodyBytes); err != nil {
			return nil, fmt.Errorf("file too large")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("error reading file")
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".json") {
			return nil, fmt.Errorf("only JSON backup files are allowed")
		}
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading body")
	}
	return data, nil
}

func HandleConfirmImport(w http.ResponseWriter, r *http.Request) {
	c, err := pending.Take(chi.URLParam(r, "token"))
	if err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}

	if err := store.ReplaceAll(r.Context(), c, ledger.Always); err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Int("expenses", len(c.Expenses)).
		Int("investments", len(c.Investments)).
		Int("crypto", len(c.Cryptos)).
		Msg("backup imported")
	apphttp.WriteJSON(w, http.StatusOK, store.Snapshot())
}

func HandleDiscardImport(w http.ResponseWriter, r *http.Request) {
	if !pending.Discard(chi.URLParam(r, "token")) {
		apphttp.ErrorResponse(w, r, backup.ErrUnknownToken)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearAll wipes every collection. Both ?confirm=yes and
// ?confirm_again=yes are required.
func HandleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := store.ClearAll(r.Context(), apphttp.QueryConfirmer(r, "confirm", "confirm_again")); err != nil {
		apphttp.ErrorResponse(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Warn().Msg("all data cleared")
	w.WriteHeader(http.StatusNoContent)
}

// HandlePlotly serves the chart library from the data directory cache,
// fetching it once from PlotlyURL when missing.
func HandlePlotly(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	cachePath := filepath.Join(cfg.DataDirectory, "cache", "plotly.min.js")

	// Try serving from cache
	if data, err := os.ReadFile(cachePath); err == nil {
		w.Header().Set("Content-Type", "application/javascript")
		w.Header().Set("Cache-Control", "public, max-age=31536000") // 1 year
		w.Write(data)
		return
	}

	logger.Info().Str("url", PlotlyURL).Msg("fetching plotly")
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, PlotlyURL, nil)
	if err != nil {
		http.Error(w, "Failed to fetch plotly: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		http.Error(w, "Failed to fetch plotly: "+err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		http.Error(w, "CDN returned status: "+resp.Status, http.StatusBadGateway)
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		http.Error(w, "Failed to read plotly response: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Cache for next time
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		logger.Warn().Err(err).Msg("could not create cache directory")
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		logger.Warn().Err(err).Msg("could not cache plotly.min.js")
	}

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Write(data)
}
