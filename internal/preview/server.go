package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NoteboomM/geomet-fetch/internal/config"
	"github.com/NoteboomM/geomet-fetch/internal/health"
	"github.com/NoteboomM/geomet-fetch/internal/middleware"
)

// upstreamReady probes GeoMet with a single-layer capabilities request.
// The unscoped catalogue weighs tens of megabytes, so the probe layer
// stays fixed.
type upstreamReady struct {
	f     Fetcher
	probe string
}

func (u upstreamReady) Readiness(ctx context.Context) error {
	if _, err := u.f.WMSCapabilities(ctx, u.probe); err != nil {
		return fmt.Errorf("geomet capabilities: %w", err)
	}
	return nil
}

// Run sets up http and serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, f Fetcher) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(upstreamReady{f: f, probe: cfg.ProbeLayer}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/layers", HandleLayers(logger, f))
	r.Get("/map", HandleMap(logger, f, cfg.MaxPixels))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// map renders on busy model layers can exceed a minute upstream
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
