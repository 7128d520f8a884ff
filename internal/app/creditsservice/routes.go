// Package creditsservice предоставляет маршруты для основного приложения.
package creditsservice

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"log/slog"

	"github.com/magabrotheeeer/credits-service/internal/config"
	"github.com/magabrotheeeer/credits-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/credits-service/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/credits-service/internal/http/handlers/user/transactions"
	"github.com/magabrotheeeer/credits-service/internal/http/handlers/webhook/clerk"
	"github.com/magabrotheeeer/credits-service/internal/http/middlewarectx"
	userservice "github.com/magabrotheeeer/credits-service/internal/services/user"
	webhookservice "github.com/magabrotheeeer/credits-service/internal/services/webhook"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	verifier middlewarectx.Verifier, userService *userservice.Service, webhookService *webhookservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.Origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с аутентификацией через JWT identity-провайдера
		r.Route("/user", func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(verifier, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(10), 20))
			r.Get("/me", me.New(logger, userService).ServeHTTP)
			r.Get("/transactions", transactions.New(logger, userService).ServeHTTP)
		})
	})

	// Webhook endpoint (без аутентификации, подпись проверяется внутри)
	r.Post("/webhooks/clerk", clerk.New(logger, webhookService, cfg.Clerk.WebhookSecret).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())

	// Статика фронтенда
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(cfg.FrontendDir, "index.html"))
	})
	r.Handle("/*", http.FileServer(http.Dir(cfg.FrontendDir)))
}
