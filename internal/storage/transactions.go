package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/credits-service/internal/models"
)

// ListTransactions возвращает записи журнала начислений пользователя,
// отсортированные по времени создания от новых к старым, не более limit штук.
// Для пользователя без транзакций возвращается пустой срез, не nil,
// чтобы в JSON-ответе всегда был массив.
func (s *Storage) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error) {
	const op = "storage.ListTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, amount, balance_after, action, description, created_at
			  FROM credit_transactions
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.CreditTransaction, 0)
	for rows.Next() {
		var tr models.CreditTransaction
		var description sql.NullString
		if err = rows.Scan(&tr.ID, &tr.UserID, &tr.Amount, &tr.BalanceAfter,
			&tr.Action, &description, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if description.Valid {
			tr.Description = &description.String
		}
		result = append(result, &tr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
