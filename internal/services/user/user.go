// Package user содержит бизнес-логику чтения профиля и истории начислений.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/credits-service/internal/models"
	"github.com/magabrotheeeer/credits-service/internal/storage"
)

const (
	// DefaultLimit применяется при отсутствующем или некорректном параметре limit.
	DefaultLimit = 50
	// MaxLimit — верхняя граница размера выборки транзакций.
	MaxLimit = 200
)

// UserRepository определяет методы хранилища, нужные сервису пользователя.
type UserRepository interface {
	// GetUserByID возвращает пользователя или storage.ErrUserNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// CreateUser вставляет минимальную запись пользователя.
	CreateUser(ctx context.Context, user models.User) error
	// ListTransactions возвращает записи журнала от новых к старым.
	ListTransactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error)
}

// Service реализует операции чтения профиля и истории начислений.
type Service struct {
	repo UserRepository
	log  *slog.Logger
}

// New создает новый Service с переданным хранилищем.
func New(repo UserRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// GetProfile возвращает профиль пользователя. Если записи нет (пользователь
// есть в Clerk, но событие о создании было пропущено), создаёт минимальную
// запись с нулевым балансом и перечитывает её.
func (s *Service) GetProfile(ctx context.Context, userID, email string) (*models.User, error) {
	const op = "user.GetProfile"

	u, err := s.repo.GetUserByID(ctx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Warn("user missing in database, self-healing", slog.String("user_id", userID))

	if email == "" {
		email = "unknown"
	}
	if err = s.repo.CreateUser(ctx, models.User{
		ID:      userID,
		Email:   email,
		Credits: 0,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err = s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListTransactions возвращает историю начислений пользователя от новых
// к старым. Limit вне диапазона [1, MaxLimit] приводится к разумному
// значению: неположительный — к DefaultLimit, слишком большой — к MaxLimit.
func (s *Service) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error) {
	const op = "user.ListTransactions"

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	result, err := s.repo.ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
