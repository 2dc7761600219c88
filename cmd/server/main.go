package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"fintrack/internal/config"
	backuphandlers "fintrack/internal/handlers/backup"
	"fintrack/internal/handlers/dashboard"
	"fintrack/internal/handlers/entries"
	pricehandlers "fintrack/internal/handlers/prices"
	settingshandlers "fintrack/internal/handlers/settings"
	apphttp "fintrack/internal/http"
	"fintrack/internal/logging"
	"fintrack/internal/services/backup"
	"fintrack/internal/services/ledger"
	"fintrack/internal/services/metrics"
	"fintrack/internal/services/prices"
	"fintrack/internal/services/storage"
	"fintrack/internal/templates"
	"fintrack/internal/version"
)

var (
	cfg      *config.Config
	logger   zerolog.Logger
	backend  *storage.Backend
	store    *ledger.Store
	poller   *prices.Poller
	renderer *templates.Renderer
)

func main() {
	logger = logging.New(os.Stderr, false)
	cfg = config.Load(logger)
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	}
	logger.Info().Str("version", version.Get().String()).Msg("starting finance tracker")
	if warning := version.Get().Check(); warning != "" {
		logger.Warn().Msg(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := SetupDependencies(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to set up dependencies")
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("error closing storage")
		}
	}()

	go poller.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

// SetupDependencies opens storage, loads the ledger and initializes every handler package
func SetupDependencies(ctx context.Context, c *config.Config, l zerolog.Logger) error {
	cfg = c
	logger = l

	var err error
	backend, err = storage.OpenBackend(ctx, c, l)
	if err != nil {
		return err
	}
	if backend.Locked() {
		return fmt.Errorf("%s is encrypted: set FINTRACK_PASSWORD to unlock it", c.DataDirectory)
	}

	store, err = ledger.Open(ctx, backend.KV, ledger.WithLogger(l))
	if err != nil {
		return err
	}

	renderer, err = templates.Default(l)
	if err != nil {
		return err
	}

	client := prices.NewClient(c.QuoteURL, c.RequestTimeout, prices.DefaultAssets)
	board := prices.NewBoard(client.Assets())
	poller = prices.NewPoller(client, board, nil, c.PollInterval, l.With().Str("component", "prices").Logger())

	metricsSvc := metrics.New()

	entries.Initialize(store)
	dashboard.Initialize(store, metricsSvc, board, backend.KV, renderer)
	backuphandlers.Initialize(c, store, backup.NewPending(time.Now))
	settingshandlers.Initialize(backend.KV, backend.Files)
	pricehandlers.Initialize(board, poller)

	return nil
}

// SetupRouter builds the chi router with middleware and every route
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(apphttp.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	dashboard.RegisterRoutes(r)
	entries.RegisterRoutes(r)
	backuphandlers.RegisterRoutes(r)
	settingshandlers.RegisterRoutes(r)
	pricehandlers.RegisterRoutes(r)

	return r
}
