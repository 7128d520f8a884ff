// Package middlewarectx содержит HTTP middleware, работающие с контекстом запроса.
//
// AuthMiddleware проверяет bearer-токен Clerk в заголовке Authorization,
// и в случае успеха добавляет в контекст идентификатор и email пользователя
// для дальнейшего использования в обработчиках.
//
// Ошибки проверки превращаются в HTTP 401 с различимыми кодами:
// UNAUTHORIZED (нет или пустой токен, нет sub), TOKEN_EXPIRED, INVALID_TOKEN,
// AUTH_ERROR (всё остальное, включая недоступный JWKS).
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/credits-service/internal/clerkauth"
	"github.com/magabrotheeeer/credits-service/internal/http/response"
	"github.com/magabrotheeeer/credits-service/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID — ключ для идентификатора пользователя в контексте.
	UserID Key = "user_id"
	// UserEmail — ключ для email пользователя в контексте.
	UserEmail Key = "user_email"
)

// Verifier описывает интерфейс проверки bearer-токена.
type Verifier interface {
	Verify(ctx context.Context, token string) (*clerkauth.Claims, error)
}

// AuthMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке
// Authorization. Если токен валиден, кладёт идентификатор и email пользователя
// в контекст запроса, иначе отвечает 401 с соответствующим кодом ошибки.
func AuthMiddleware(verifier Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.CodeUnauthorized, "missing bearer token"))
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenStr == "" {
				log.Error("empty bearer token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.CodeUnauthorized, "empty bearer token"))
				return
			}

			claims, err := verifier.Verify(r.Context(), tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, clerkauth.ErrTokenExpired):
					log.Error("token expired")
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error(response.CodeTokenExpired, "token expired"))
				case errors.Is(err, clerkauth.ErrTokenInvalid):
					log.Error("invalid token", sl.Err(err))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error(response.CodeInvalidToken, "invalid token"))
				default:
					log.Error("token verification failed", sl.Err(err))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error(response.CodeAuthError, "verification failed"))
				}
				return
			}

			if claims.Subject == "" {
				log.Error("token has no subject claim")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.CodeUnauthorized, "token has no user id"))
				return
			}

			ctx := context.WithValue(r.Context(), UserID, claims.Subject)
			ctx = context.WithValue(ctx, UserEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
