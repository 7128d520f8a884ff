// Package webhook содержит бизнес-логику согласования пользователей
// по событиям Clerk: создание с приветственным бонусом, частичное
// обновление профиля и деактивация.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/credits-service/internal/models"
	"github.com/magabrotheeeer/credits-service/internal/storage"
)

// UserRepository определяет методы хранилища, нужные для согласования событий.
type UserRepository interface {
	// GetUserByID возвращает пользователя или storage.ErrUserNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// CreateUserWithSignupBonus атомарно создаёт пользователя и запись о бонусе.
	CreateUserWithSignupBonus(ctx context.Context, user models.User, bonus int, description string) error
	// UpdateUserFields применяет частичное обновление профиля.
	UpdateUserFields(ctx context.Context, id string, patch models.UserPatch) (int, error)
	// DeactivateUser выставляет is_active = false.
	DeactivateUser(ctx context.Context, id string) error
}

// Service реализует обработку событий жизненного цикла пользователя.
type Service struct {
	repo        UserRepository
	signupBonus int
	log         *slog.Logger
}

// New создаёт Service с переданным хранилищем и размером приветственного бонуса.
func New(repo UserRepository, signupBonus int, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		signupBonus: signupBonus,
		log:         log,
	}
}

// HandleEvent диспетчеризует событие по его виду. Неизвестные виды событий
// логируются и игнорируются без ошибки.
func (s *Service) HandleEvent(ctx context.Context, event models.ClerkEvent) error {
	switch models.ParseEventType(event.Type) {
	case models.EventUserCreated:
		return s.handleUserCreated(ctx, event.Data)
	case models.EventUserUpdated:
		return s.handleUserUpdated(ctx, event.Data)
	case models.EventUserDeleted:
		return s.handleUserDeleted(ctx, event.Data)
	case models.EventUnknown:
		s.log.Info("ignored webhook event", slog.String("type", event.Type))
		return nil
	}
	return nil
}

// handleUserCreated создаёт пользователя с приветственным бонусом.
// Повторная доставка того же события — no-op: пользователь уже существует.
func (s *Service) handleUserCreated(ctx context.Context, data models.ClerkUserData) error {
	const op = "webhook.handleUserCreated"

	_, err := s.repo.GetUserByID(ctx, data.ID)
	if err == nil {
		s.log.Info("user already exists, skipping", slog.String("user_id", data.ID))
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:    data.ID,
		Email: extractEmail(data),
	}
	if nickname := extractName(data); nickname != "" {
		user.Nickname = &nickname
	}
	if data.ImageURL != "" {
		user.AvatarURL = &data.ImageURL
	}

	description := fmt.Sprintf("Signup bonus: %d credits", s.signupBonus)
	if err := s.repo.CreateUserWithSignupBonus(ctx, user, s.signupBonus, description); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("new user created",
		slog.String("user_id", data.ID),
		slog.String("email", user.Email),
		slog.Int("signup_bonus", s.signupBonus))
	return nil
}

// handleUserUpdated обновляет только непустые поля профиля. Если пользователя
// нет в базе (пропущенное событие о создании), событие обрабатывается
// как user.created.
func (s *Service) handleUserUpdated(ctx context.Context, data models.ClerkUserData) error {
	const op = "webhook.handleUserUpdated"

	_, err := s.repo.GetUserByID(ctx, data.ID)
	if errors.Is(err, storage.ErrUserNotFound) {
		s.log.Warn("update for unknown user, creating", slog.String("user_id", data.ID))
		return s.handleUserCreated(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	patch := models.UserPatch{
		Email:     extractEmail(data),
		Nickname:  extractName(data),
		AvatarURL: data.ImageURL,
	}
	if patch.IsEmpty() {
		s.log.Info("nothing to update", slog.String("user_id", data.ID))
		return nil
	}

	if _, err := s.repo.UpdateUserFields(ctx, data.ID, patch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user updated", slog.String("user_id", data.ID))
	return nil
}

// handleUserDeleted деактивирует пользователя. Повторная доставка и события
// о неизвестных пользователях безвредны: обновление затронет ноль строк.
func (s *Service) handleUserDeleted(ctx context.Context, data models.ClerkUserData) error {
	const op = "webhook.handleUserDeleted"

	if err := s.repo.DeactivateUser(ctx, data.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user deactivated", slog.String("user_id", data.ID))
	return nil
}

// extractEmail выбирает адрес, чей id совпадает с primary_email_address_id,
// иначе первый адрес из списка, иначе пустую строку.
func extractEmail(data models.ClerkUserData) string {
	for _, addr := range data.EmailAddresses {
		if addr.ID == data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(data.EmailAddresses) > 0 {
		return data.EmailAddresses[0].EmailAddress
	}
	return ""
}

// extractName склеивает имя и фамилию через пробел; пустой результат
// означает отсутствие имени, а не пустую строку в базе.
func extractName(data models.ClerkUserData) string {
	return strings.TrimSpace(data.FirstName + " " + data.LastName)
}
