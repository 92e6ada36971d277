package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/models"
)

// HasLiveSubscription сообщает, есть ли у искателя действующая подписка
// на эксперта: status = active и end_at пуст либо в будущем.
func (s *Storage) HasLiveSubscription(ctx context.Context, seekerID, expertID int64) (bool, error) {
	const op = "storage.HasLiveSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
				  SELECT 1 FROM subscriptions
				  WHERE seeker_id = $1 AND expert_id = $2
				    AND status = $3
				    AND (end_at IS NULL OR end_at > NOW())
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, seekerID, expertID, models.SubStatusActive).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// PurchaseSubscription атомарно оплачивает подписку из кошелька искателя:
// строка пользователя блокируется FOR UPDATE, затем в одной транзакции
// списывается баланс, добавляются запись журнала, подписка, платёж и чат.
// Нехватка средств — ErrInsufficientFunds; нарушение уникального индекса
// активной подписки — ErrDuplicateSubscription.
func (s *Storage) PurchaseSubscription(ctx context.Context, seekerID, expertID int64,
	price decimal.Decimal, plan string, endAt *time.Time) (*models.PurchaseResult, error) {
	const op = "storage.PurchaseSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var balance decimal.Decimal
	if err = tx.QueryRowContext(ctx,
		`SELECT wallet FROM users WHERE user_id = $1 FOR UPDATE`, seekerID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if balance.LessThan(price) {
		return nil, fmt.Errorf("%s: %w", op, ErrInsufficientFunds)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET wallet = wallet - $1 WHERE user_id = $2`, price, seekerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	startAt := time.Now()
	sub := models.Subscription{
		SeekerID:   seekerID,
		ExpertID:   expertID,
		Plan:       plan,
		StartAt:    startAt,
		EndAt:      endAt,
		AmountPaid: price,
		Status:     models.SubStatusActive,
	}
	if err = tx.QueryRowContext(ctx,
		`INSERT INTO subscriptions (seeker_id, expert_id, plan, start_at, end_at, amount_paid, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING subscription_id`,
		seekerID, expertID, plan, startAt, endAt, price, models.SubStatusActive).Scan(&sub.SubscriptionID); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateSubscription)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var txID int64
	note := fmt.Sprintf("subscription %d", sub.SubscriptionID)
	if err = tx.QueryRowContext(ctx,
		`INSERT INTO wallet_transactions (user_id, kind, method, amount, state, note)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING tx_id`,
		seekerID, models.TxKindDebit, models.TxMethodWallet, price,
		models.TxStateCompleted, note).Scan(&txID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO payments (subscription_id, payer_id, expert_id, amount)
		 VALUES ($1, $2, $3, $4)`,
		sub.SubscriptionID, seekerID, expertID, price); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var chatID int64
	if err = tx.QueryRowContext(ctx,
		`INSERT INTO chats (subscription_id) VALUES ($1) RETURNING chat_id`,
		sub.SubscriptionID).Scan(&chatID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.PurchaseResult{Subscription: sub, ChatID: chatID, TxID: txID}, nil
}

// ListSubscriptionsBySeeker возвращает подписки искателя, новые первыми.
func (s *Storage) ListSubscriptionsBySeeker(ctx context.Context, seekerID int64, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsBySeeker"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT subscription_id, seeker_id, expert_id, plan, start_at, end_at, amount_paid, status
			  FROM subscriptions
			  WHERE seeker_id = $1
			  ORDER BY start_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, seekerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.SubscriptionID, &item.SeekerID, &item.ExpertID, &item.Plan,
			&item.StartAt, &item.EndAt, &item.AmountPaid, &item.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindLatestSubscription возвращает последнюю по start_at подписку пары
// искатель/эксперт в любом статусе. Используется правилом допуска к оценке.
func (s *Storage) FindLatestSubscription(ctx context.Context, seekerID, expertID int64) (*models.Subscription, error) {
	const op = "storage.FindLatestSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT subscription_id, seeker_id, expert_id, plan, start_at, end_at, amount_paid, status
			  FROM subscriptions
			  WHERE seeker_id = $1 AND expert_id = $2
			  ORDER BY start_at DESC
			  LIMIT 1`
	var item models.Subscription
	err := s.DB.QueryRowContext(ctx, query, seekerID, expertID).Scan(
		&item.SubscriptionID, &item.SeekerID, &item.ExpertID, &item.Plan,
		&item.StartAt, &item.EndAt, &item.AmountPaid, &item.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// FindLiveSubscription возвращает действующую подписку пары искатель/эксперт.
func (s *Storage) FindLiveSubscription(ctx context.Context, seekerID, expertID int64) (*models.Subscription, error) {
	const op = "storage.FindLiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT subscription_id, seeker_id, expert_id, plan, start_at, end_at, amount_paid, status
			  FROM subscriptions
			  WHERE seeker_id = $1 AND expert_id = $2
			    AND status = $3
			    AND (end_at IS NULL OR end_at > NOW())
			  ORDER BY start_at DESC
			  LIMIT 1`
	var item models.Subscription
	err := s.DB.QueryRowContext(ctx, query, seekerID, expertID, models.SubStatusActive).Scan(
		&item.SubscriptionID, &item.SeekerID, &item.ExpertID, &item.Plan,
		&item.StartAt, &item.EndAt, &item.AmountPaid, &item.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}
