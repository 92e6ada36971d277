// Package models содержит доменные структуры MeetExpert,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы учётной записи пользователя.
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
	UserStatusDeleted = "deleted"
)

// User представляет зарегистрированного пользователя системы.
// Wallet — баланс кошелька; изменяется только операциями, порождающими
// записи в wallet_transactions, напрямую не выставляется.
type User struct {
	UserID       int64           // Уникальный идентификатор пользователя
	FirstName    string          // Имя
	LastName     string          // Фамилия
	Username     string          // Имя пользователя (уникальное)
	Email        string          // Электронная почта
	PasswordHash string          // Хэш пароля пользователя
	Role         string          // Роль пользователя, admin или user
	Status       string          // active, blocked или deleted
	Avatar       *string         // URL аватара
	CoverPhoto   *string         // URL обложки профиля
	Profession   *string         // Профессия
	Bio          *string         // О себе
	Wallet       decimal.Decimal // Баланс кошелька
	CreatedAt    time.Time
}

// PublicUser урезанное представление пользователя для публичных ответов.
type PublicUser struct {
	UserID    int64   `json:"user_id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Avatar    *string `json:"avatar"`
}

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Username  string `json:"username" validate:"required,alphanum"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginRequest используется для приёма данных входа из JSON-запроса.
// Допускается вход как по email, так и по username.
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required"`
	Password        string `json:"password" validate:"required"`
}
