// Package me реализует HTTP-обработчик чтения профиля текущего пользователя.
//
// Handler берёт идентификатор и email из контекста (их кладёт auth middleware),
// запрашивает профиль у сервиса и возвращает полную запись пользователя
// вместе с балансом кредитов.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/credits-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/credits-service/internal/http/response"
	"github.com/magabrotheeeer/credits-service/internal/lib/sl"
	"github.com/magabrotheeeer/credits-service/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения профиля.
type Service interface {
	GetProfile(ctx context.Context, userID, email string) (*models.User, error)
}

// Handler управляет HTTP-запросами на чтение профиля.
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
	const op = "handlers.user.me"
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
	email, _ := r.Context().Value(middlewarectx.UserEmail).(string)

	u, err := h.service.GetProfile(r.Context(), userID, email)
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.CodeInternalError, "could not load profile"))
		return
	}

	log.Info("profile loaded", slog.String("user_id", userID))
	render.JSON(w, r, response.OK(u))
}
