package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Модели ценообразования эксперта.
const (
	PlanMonthly     = "monthly"
	PlanPerChat     = "per_chat"
	PlanPerQuestion = "per_question"
)

// ExpertProfile представляет профиль эксперта, привязанный к пользователю.
type ExpertProfile struct {
	ExpertID      int64           // Совпадает с user_id владельца
	PriceModel    string          // monthly, per_chat или per_question
	PriceAmount   decimal.Decimal // Цена подписки
	Currency      string
	IsVerified    bool
	OverallRating decimal.Decimal // Средняя оценка, 2 знака после запятой
}

// ExpertCard карточка эксперта для списков и публичного профиля.
type ExpertCard struct {
	ExpertID      int64           `json:"expert_id"`
	PriceModel    string          `json:"price_model"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	Currency      string          `json:"currency"`
	OverallRating decimal.Decimal `json:"overall_rating"`
	IsVerified    bool            `json:"is_verified"`
	User          PublicUser      `json:"user"`
}

// ExpertFilter параметры поиска по каталогу экспертов.
type ExpertFilter struct {
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string // rating_desc (по умолчанию), rating_asc, price_asc, price_desc
	Page     int
	Limit    int
}

// ExpertRequest заявка пользователя на статус эксперта.
type ExpertRequest struct {
	RequestID    int64      `json:"request_id"`
	UserID       int64      `json:"user_id"`
	Skill        string     `json:"skill"`
	Company      *string    `json:"company"`
	Position     *string    `json:"position"`
	Description  string     `json:"description"`
	ProofURLs    *string    `json:"proof_urls"` // JSON-массив ссылок на подтверждающие документы
	Status       string     `json:"status"`     // pending, approved или rejected
	AdminMessage *string    `json:"admin_message"`
	CreatedAt    time.Time  `json:"created_at"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
}

// CreateExpertRequestRequest тело запроса на подачу заявки.
type CreateExpertRequestRequest struct {
	Skill       string   `json:"skill" validate:"required"`
	Company     string   `json:"company,omitempty" validate:"omitempty"`
	Position    string   `json:"position,omitempty" validate:"omitempty"`
	Description string   `json:"description" validate:"required"`
	ProofURLs   []string `json:"proof_urls,omitempty" validate:"omitempty"`
}
