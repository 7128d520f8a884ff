package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/credits-service/internal/models"
)

// GetUserByID возвращает пользователя по идентификатору Clerk.
// Если строки нет, возвращает ErrUserNotFound.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, nickname, avatar_url, credits, is_active, created_at, updated_at
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, id)

	var nickname, avatarURL sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &nickname, &avatarURL,
		&u.Credits, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if nickname.Valid {
		u.Nickname = &nickname.String
	}
	if avatarURL.Valid {
		u.AvatarURL = &avatarURL.String
	}
	return u, nil
}

// CreateUser вставляет минимальную запись пользователя. Используется в пути
// самовосстановления, когда пользователь есть в Clerk, но событие о создании
// было пропущено.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (id, email, nickname, avatar_url, credits)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Email, user.Nickname, user.AvatarURL, user.Credits); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateUserWithSignupBonus в одной транзакции вставляет пользователя
// с приветственными кредитами и запись журнала начислений о бонусе.
// Amount и balance_after транзакции равны размеру бонуса.
func (s *Storage) CreateUserWithSignupBonus(ctx context.Context, user models.User, bonus int, description string) error {
	const op = "storage.CreateUserWithSignupBonus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	userQuery := `INSERT INTO users (id, email, nickname, avatar_url, credits)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, userQuery,
		user.ID, user.Email, user.Nickname, user.AvatarURL, bonus); err != nil {
		return fmt.Errorf("%s: insert user: %w", op, err)
	}

	txQuery := `INSERT INTO credit_transactions (id, user_id, amount, balance_after, action, description)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, txQuery,
		uuid.New().String(), user.ID, bonus, bonus, "signup_bonus", description); err != nil {
		return fmt.Errorf("%s: insert transaction: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserFields применяет частичное обновление: в SET попадают только
// непустые поля патча. Пустой патч не выполняет запрос вовсе.
// Возвращает количество изменённых строк.
func (s *Storage) UpdateUserFields(ctx context.Context, id string, patch models.UserPatch) (int, error) {
	const op = "storage.UpdateUserFields"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if patch.IsEmpty() {
		return 0, nil
	}

	set := make([]string, 0, 4)
	args := make([]any, 0, 4)
	next := 1

	if patch.Email != "" {
		set = append(set, fmt.Sprintf("email = $%d", next))
		args = append(args, patch.Email)
		next++
	}
	if patch.Nickname != "" {
		set = append(set, fmt.Sprintf("nickname = $%d", next))
		args = append(args, patch.Nickname)
		next++
	}
	if patch.AvatarURL != "" {
		set = append(set, fmt.Sprintf("avatar_url = $%d", next))
		args = append(args, patch.AvatarURL)
		next++
	}
	set = append(set, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set, ", "), next)
	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeactivateUser выставляет is_active = false (soft delete).
// Отсутствие строки не считается ошибкой: обновление по первичному ключу
// молча затрагивает ноль строк, операция идемпотентна.
func (s *Storage) DeactivateUser(ctx context.Context, id string) error {
	const op = "storage.DeactivateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_active = FALSE, updated_at = NOW()
			  WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
