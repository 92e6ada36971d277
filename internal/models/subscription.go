package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы подписки.
const (
	SubStatusActive   = "active"
	SubStatusExpired  = "expired"
	SubStatusCanceled = "canceled"
	SubStatusRefunded = "refunded"
)

// Subscription связывает искателя с экспертом. EndAt может быть nil —
// это означает бессрочный доступ (планы per_chat и per_question).
type Subscription struct {
	SubscriptionID int64           `json:"subscription_id"`
	SeekerID       int64           `json:"seeker_id"`
	ExpertID       int64           `json:"expert_id"`
	Plan           string          `json:"plan"`
	StartAt        time.Time       `json:"start_at"`
	EndAt          *time.Time      `json:"end_at"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Status         string          `json:"status"`
}

// Live сообщает, действует ли подписка на момент now.
func (s *Subscription) Live(now time.Time) bool {
	return s.Status == SubStatusActive && (s.EndAt == nil || s.EndAt.After(now))
}

// PurchaseResult итог атомарной покупки подписки.
type PurchaseResult struct {
	Subscription Subscription `json:"subscription"`
	ChatID       int64        `json:"chat_id"`
	TxID         int64        `json:"tx_id"`
}

// Payment учётная запись о платеже за подписку для админской отчётности.
// Чисто наблюдательная, ни в каких инвариантах не участвует.
type Payment struct {
	PaymentID      int64           `json:"payment_id"`
	SubscriptionID int64           `json:"subscription_id"`
	PayerID        int64           `json:"payer_id"`
	ExpertID       int64           `json:"expert_id"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}
