// Package clerk реализует HTTP-обработчик webhook-событий Clerk.
//
// Clerk присылает POST на /webhooks/clerk при регистрации, изменении
// и удалении пользователей. Каждый запрос подписан по схеме Svix;
// запросы с несошедшейся подписью отклоняются с 401, а незаданный
// секрет — ошибка конфигурации, 500.
package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/credits-service/internal/http/response"
	"github.com/magabrotheeeer/credits-service/internal/lib/sl"
	"github.com/magabrotheeeer/credits-service/internal/lib/svix"
	"github.com/magabrotheeeer/credits-service/internal/models"
)

// Service описывает интерфейс бизнес-логики согласования событий.
type Service interface {
	HandleEvent(ctx context.Context, event models.ClerkEvent) error
}

// Handler управляет HTTP-запросами с webhook-событиями Clerk.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string // Секрет для проверки подписи
	validate      *validator.Validate
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
		validate:      validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.clerk"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidPayload, "cannot read body"))
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	// Незаданный секрет — ошибка конфигурации сервиса, а не подписи запроса.
	if h.webhookSecret == "" {
		log.Error("webhook secret is not configured")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeConfigError, "webhook secret is not configured"))
		return
	}
	wh, err := svix.New(h.webhookSecret)
	if err != nil {
		log.Error("malformed webhook secret", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeConfigError, "malformed webhook secret"))
		return
	}

	if err = wh.Verify(body,
		r.Header.Get("svix-id"),
		r.Header.Get("svix-timestamp"),
		r.Header.Get("svix-signature"),
	); err != nil {
		log.Warn("webhook signature verification failed", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.CodeInvalidSign, "invalid signature"))
		return
	}

	var event models.ClerkEvent
	if err = json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidPayload, "invalid payload"))
		return
	}
	if err = h.validate.Struct(event.Data); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Error("webhook payload validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validationErrs))
			return
		}
		log.Error("webhook payload validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidPayload, "invalid payload"))
		return
	}

	log.Info("clerk webhook received", slog.String("type", event.Type))

	if err = h.service.HandleEvent(r.Context(), event); err != nil {
		// Детали остаются в логах, наружу уходит только общий ответ.
		log.Error("failed to handle webhook event", slog.String("type", event.Type), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeInternalError, "internal error"))
		return
	}

	render.JSON(w, r, map[string]string{"status": "ok"})
}
