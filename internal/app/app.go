package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alex-user-go/cheapfare/internal/airports"
	"github.com/alex-user-go/cheapfare/internal/config"
	"github.com/alex-user-go/cheapfare/internal/fares"
	"github.com/alex-user-go/cheapfare/internal/handler"
	"github.com/alex-user-go/cheapfare/internal/middleware"
	"github.com/alex-user-go/cheapfare/internal/obs"
	"github.com/alex-user-go/cheapfare/internal/providers"
)

// Run initializes and runs the application.
func Run() error {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	h, metrics, err := NewHandler(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      Routes(h, metrics, cfg, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "upstream", cfg.TravelpayoutsURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

// NewHandler builds the /predict handler and its dependencies from cfg.
func NewHandler(cfg *config.Config, logger *slog.Logger) (*handler.Handler, *obs.Metrics, error) {
	metrics := obs.NewMetrics(logger)

	client := providers.NewMatrixClient(cfg.TravelpayoutsURL, cfg.TravelpayoutsToken, cfg.UpstreamTimeout)

	var opts []fares.Option
	if cfg.AirportsCSV != "" {
		dir, err := airports.Load(cfg.AirportsCSV)
		if err != nil {
			return nil, nil, fmt.Errorf("load airports: %w", err)
		}
		logger.Info("airport directory loaded", "path", cfg.AirportsCSV, "airports", dir.Len())
		opts = append(opts, fares.WithAirports(dir))
	}

	selector := fares.NewSelector(client, cfg.UpstreamTimeout, metrics, logger, opts...)

	return handler.New(selector, metrics, logger), metrics, nil
}

// Routes registers the endpoints and wraps them with middleware.
func Routes(h *handler.Handler, metrics *obs.Metrics, cfg *config.Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", h.PredictHandler)
	mux.HandleFunc("GET /healthz", obs.HealthHandler(logger))
	mux.Handle("GET /metrics", metrics.MetricsHandler())

	var wrapped http.Handler = mux
	wrapped = middleware.CORS(cfg.CORSOrigins)(wrapped)
	wrapped = middleware.Recover(logger)(wrapped)
	wrapped = middleware.Logging(logger, metrics)(wrapped)
	return wrapped
}
