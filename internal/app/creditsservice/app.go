// Package creditsservice собирает HTTP-сервис из конфигурации,
// хранилища и обработчиков, управляет его жизненным циклом.
package creditsservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/credits-service/internal/clerkauth"
	"github.com/magabrotheeeer/credits-service/internal/config"
	"github.com/magabrotheeeer/credits-service/internal/migrations"
	userservice "github.com/magabrotheeeer/credits-service/internal/services/user"
	webhookservice "github.com/magabrotheeeer/credits-service/internal/services/webhook"
	"github.com/magabrotheeeer/credits-service/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	verifier, err := clerkauth.New(ctx, cfg.Clerk.Domain)
	if err != nil {
		return nil, err
	}

	userService := userservice.New(db, logger)
	webhookService := webhookservice.New(db, cfg.Credits.SignupBonus, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, cfg, verifier, userService, webhookService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
