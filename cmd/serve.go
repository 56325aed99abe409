package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/desertthunder/muse/internal/auth"
	"github.com/desertthunder/muse/internal/migrate"
	"github.com/desertthunder/muse/internal/repositories"
	"github.com/desertthunder/muse/internal/server"
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
)

const shutdownTimeout = 10 * time.Second

// Serve starts the HTTP API server and blocks until interrupted.
//
// Process-scoped handles (database pool, upstream HTTP clients) are
// constructed here once and injected into handlers.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	config := r.loadConfig(cmd)

	pool, err := shared.NewDatabase(ctx, config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer pool.Close()

	if config.Database.Migrate {
		r.logger.Info("running database migrations")
		if err := migrate.Up(ctx, config.Database.DSN); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	users := repositories.NewUserRepository(pool)
	tokens := repositories.NewRefreshTokenRepository(pool, config.Auth.RefreshTTL())
	issuer := auth.NewIssuer(users, tokens, config.Auth)
	github := services.NewGitHubService(config.GitHub)
	catalog := services.NewMusicService(config.Music)

	router := server.NewBasicRouter()
	router.Use(
		server.Recover(r.logger),
		server.Logging(r.logger),
		server.CORS(config.CORS.AllowOrigins),
	)

	limiter := rate.NewLimiter(rate.Limit(5), 10)
	router.Handler(server.WithMiddleware(
		server.NewAuthHandler(github, issuer, shared.WithLogger(r.logger, "handler", "auth")),
		server.RateLimit(limiter),
	))
	router.Handler(server.NewCatalogHandler(catalog, shared.WithLogger(r.logger, "handler", "catalog")))
	router.Handler(server.NewHealthHandler(pool, shared.WithLogger(r.logger, "handler", "health")))

	srv := &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
