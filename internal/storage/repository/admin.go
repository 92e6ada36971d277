package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/models"
)

// AdminSummary сводные показатели платформы для админской панели.
type AdminSummary struct {
	TotalUsers       int             `json:"total_users"`
	TotalExperts     int             `json:"total_experts"`
	ActiveSubs       int             `json:"active_subscriptions"`
	PendingRequests  int             `json:"pending_requests"`
	TotalPayments    int             `json:"total_payments"`
	PaymentsVolume   decimal.Decimal `json:"payments_volume"`
	CreditedTopupSum decimal.Decimal `json:"credited_topup_sum"`
}

// GetAdminSummary собирает сводку по платформе одним запросом.
func (s *Storage) GetAdminSummary(ctx context.Context) (*AdminSummary, error) {
	const op = "storage.GetAdminSummary"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      (SELECT COUNT(*) FROM users WHERE status <> 'deleted'),
			      (SELECT COUNT(*) FROM expert_profiles WHERE is_verified),
			      (SELECT COUNT(*) FROM subscriptions
			           WHERE status = 'active' AND (end_at IS NULL OR end_at > NOW())),
			      (SELECT COUNT(*) FROM expert_requests WHERE status = 'pending'),
			      (SELECT COUNT(*) FROM payments),
			      (SELECT COALESCE(SUM(amount), 0) FROM payments),
			      (SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
			           WHERE kind = 'credit' AND state IN ('credited', 'completed'))`
	var summary AdminSummary
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&summary.TotalUsers, &summary.TotalExperts, &summary.ActiveSubs,
		&summary.PendingRequests, &summary.TotalPayments,
		&summary.PaymentsVolume, &summary.CreditedTopupSum)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &summary, nil
}

// ListPayments возвращает платежи за подписки для админской отчётности.
func (s *Storage) ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT payment_id, subscription_id, payer_id, expert_id, amount, created_at
			  FROM payments
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var item models.Payment
		if err := rows.Scan(&item.PaymentID, &item.SubscriptionID, &item.PayerID,
			&item.ExpertID, &item.Amount, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
