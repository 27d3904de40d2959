// Command cleanup removes stale user mirrors: rows synced from the session
// provider that never accumulated any ratings or watchlist entries. It is
// intended to be invoked by an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/anitrack/anitrack-backend/internal/adapter/postgres"
	"github.com/anitrack/anitrack-backend/internal/app"
	"github.com/anitrack/anitrack-backend/internal/config"
)

const staleAfter = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	tag, err := pool.Exec(ctx, `
		DELETE FROM users
		WHERE created_at < $1
		  AND NOT EXISTS (SELECT 1 FROM ratings r WHERE r.user_id = users.id)
		  AND NOT EXISTS (SELECT 1 FROM watchlist w WHERE w.user_id = users.id)`,
		time.Now().Add(-staleAfter),
	)
	if err != nil {
		logger.Error("cleanup stale users", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("cleanup finished", slog.Int64("users_removed", tag.RowsAffected()))
}
