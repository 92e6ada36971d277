package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rating оценка эксперта искателем. Ключом служит subscription_id:
// на одну историческую подписку существует не более одной оценки,
// повторная отправка обновляет существующую.
type Rating struct {
	RatingID       int64     `json:"rating_id"`
	SubscriptionID int64     `json:"subscription_id"`
	SeekerID       int64     `json:"seeker_id"`
	ExpertID       int64     `json:"expert_id"`
	RatingValue    int       `json:"rating_value"` // 1..5
	Review         *string   `json:"review"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RatingWithSeeker оценка вместе с данными автора для публичного списка.
type RatingWithSeeker struct {
	Rating
	Seeker PublicUser `json:"seeker"`
}

// RatingSummary агрегат по оценкам эксперта.
type RatingSummary struct {
	Avg   decimal.Decimal `json:"avg"` // 2 знака после запятой
	Total int             `json:"total"`
}

// CreateRatingRequest тело запроса на выставление оценки.
type CreateRatingRequest struct {
	ExpertID    int64  `json:"expert_id" validate:"required,gt=0"`
	RatingValue int    `json:"rating_value" validate:"required,gte=1,lte=5"`
	Review      string `json:"review,omitempty" validate:"omitempty"`
}
