// Package app wires configuration, storage, providers, services and the
// HTTP server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anitrack/anitrack-backend/internal/adapter/postgres"
	ratingrepo "github.com/anitrack/anitrack-backend/internal/adapter/postgres/rating"
	userrepo "github.com/anitrack/anitrack-backend/internal/adapter/postgres/user"
	watchlistrepo "github.com/anitrack/anitrack-backend/internal/adapter/postgres/watchlist"
	"github.com/anitrack/anitrack-backend/internal/adapter/provider/anilist"
	"github.com/anitrack/anitrack-backend/internal/adapter/provider/recommender"
	"github.com/anitrack/anitrack-backend/internal/auth"
	"github.com/anitrack/anitrack-backend/internal/config"
	"github.com/anitrack/anitrack-backend/internal/service/catalog"
	"github.com/anitrack/anitrack-backend/internal/service/tracker"
	"github.com/anitrack/anitrack-backend/internal/transport/middleware"
	"github.com/anitrack/anitrack-backend/internal/transport/rest"
)

const rateLimitPerMinute = 300

// Run is the application entry point. It loads configuration, connects to
// the database, builds the service graph and serves HTTP until ctx is
// cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// Repositories.
	ratings := ratingrepo.New(pool)
	watchlist := watchlistrepo.New(pool)
	users := userrepo.New(pool)

	// External providers.
	anilistClient := anilist.NewClientWithURL(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)
	recClient := recommender.NewClient(cfg.Recommender.BaseURL, cfg.Recommender.Timeout, logger)

	// Services.
	catalogSvc := catalog.NewService(logger, anilistClient, cfg.Catalog)
	trackerSvc := tracker.NewService(logger, ratings, watchlist, catalogSvc, recClient, cfg.Recommender)

	// Transport.
	validator := auth.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	mux := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(pool, BuildVersion()),
		Tracker: rest.NewTrackerHandler(trackerSvc, logger),
		Catalog: rest.NewCatalogHandler(catalogSvc, trackerSvc, logger),
	})

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		limiter.Limit(rateLimitPerMinute),
		middleware.Auth(validator),
		middleware.UserSync(users, logger),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
