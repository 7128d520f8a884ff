package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, id, email string, credits int, isActive bool) {
	_, err := f.storage.DB.Exec(`INSERT INTO users (id, email, credits, is_active)
		VALUES ($1, $2, $3, $4)`,
		id, email, credits, isActive)
	require.NoError(t, err)
}

// CreateTransaction создает запись журнала начислений с заданным временем
func (f *TestDataFactory) CreateTransaction(t *testing.T, userID string, amount, balanceAfter int,
	action string, createdAt time.Time) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO credit_transactions
		(id, user_id, amount, balance_after, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userID, amount, balanceAfter, action, createdAt)
	require.NoError(t, err)
	return id
}
