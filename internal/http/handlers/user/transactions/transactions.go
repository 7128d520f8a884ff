// Package transactions реализует HTTP-обработчик списка начислений
// текущего пользователя, от новых к старым.
package transactions

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/credits-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/credits-service/internal/http/response"
	"github.com/magabrotheeeer/credits-service/internal/lib/sl"
	"github.com/magabrotheeeer/credits-service/internal/models"
)

// Service описывает интерфейс бизнес-логики списка начислений.
type Service interface {
	ListTransactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error)
}

// Handler управляет HTTP-запросами на чтение истории начислений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.transactions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.CodeUnauthorized, "unauthorized"))
		return
	}

	// Некорректное значение трактуем как отсутствующее, сервис подставит
	// значение по умолчанию и ограничит сверху.
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}

	result, err := h.service.ListTransactions(r.Context(), userID, limit)
	if err != nil {
		log.Error("failed to list transactions", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeInternalError, "could not list transactions"))
		return
	}

	log.Info("transactions listed", slog.String("user_id", userID), slog.Int("count", len(result)))
	render.JSON(w, r, response.OK(map[string]any{
		"transactions": result,
	}))
}
