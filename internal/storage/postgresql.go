// Package storage реализует хранилище данных на основе PostgreSQL
// для пользователей и журнала начислений. Предоставляет методы чтения,
// создания, частичного обновления и деактивации пользователей, а также
// выборку транзакций.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrUserNotFound возвращается, когда пользователь с заданным
// идентификатором отсутствует в базе. Отличает "строки нет" от
// ошибки обращения к хранилищу.
var ErrUserNotFound = errors.New("user not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
// Создаётся один раз при старте процесса и передаётся сервисам явно.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
