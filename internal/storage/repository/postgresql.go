// Package repository реализует хранилище данных на основе PostgreSQL
// для MeetExpert. Предоставляет методы работы с пользователями, экспертами,
// кошельком, подписками, чатами, оценками и уведомлениями.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисный слой транслирует их в доменные.
var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds баланса кошелька не хватает на операцию.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDuplicateSubscription нарушен уникальный индекс активной подписки.
	ErrDuplicateSubscription = errors.New("duplicate active subscription")
	// ErrTxNotCreditable операция кошелька в терминальном состоянии failed.
	ErrTxNotCreditable = errors.New("transaction is not creditable")
	// ErrUserExists пользователь с таким email или username уже есть.
	ErrUserExists = errors.New("user already exists")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
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
