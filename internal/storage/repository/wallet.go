package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/models"
)

// CreateTopupTx создаёт запись журнала о пополнении через шлюз в состоянии initiated.
func (s *Storage) CreateTopupTx(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	const op = "storage.CreateTopupTx"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO wallet_transactions (user_id, kind, method, amount, state)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING tx_id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		userID, models.TxKindCredit, models.TxMethodBkash, amount, models.TxStateInitiated).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// AttachGatewayRef сохраняет paymentID шлюза и переводит запись
// из initiated в gateway_pending.
func (s *Storage) AttachGatewayRef(ctx context.Context, txID int64, gatewayRef string) error {
	const op = "storage.AttachGatewayRef"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE wallet_transactions
			  SET gateway_ref = $1, state = $2
			  WHERE tx_id = $3 AND state = $4`
	result, err := s.DB.ExecContext(ctx, query,
		gatewayRef, models.TxStateGatewayPending, txID, models.TxStateInitiated)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// MarkTopupFailed переводит запись по gateway_ref в состояние failed.
// Терминальные состояния (credited, failed) не трогаются.
func (s *Storage) MarkTopupFailed(ctx context.Context, gatewayRef string) (int, error) {
	const op = "storage.MarkTopupFailed"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE wallet_transactions
			  SET state = $1
			  WHERE gateway_ref = $2 AND state IN ($3, $4)`
	result, err := s.DB.ExecContext(ctx, query,
		models.TxStateFailed, gatewayRef, models.TxStateInitiated, models.TxStateGatewayPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CreditTopup атомарно зачисляет пополнение по gateway_ref: строка журнала
// блокируется FOR UPDATE, баланс кошелька и состояние записи меняются в одной
// транзакции. Повторная доставка callback для уже зачисленной записи —
// no-op, applied=false. Для записи в состоянии failed возвращает ErrTxNotCreditable.
func (s *Storage) CreditTopup(ctx context.Context, gatewayRef string) (applied bool, userID int64, amount decimal.Decimal, err error) {
	const op = "storage.CreditTopup"
	select {
	case <-ctx.Done():
		return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var txID int64
	var state string
	query := `SELECT tx_id, user_id, amount, state
			  FROM wallet_transactions
			  WHERE gateway_ref = $1
			  FOR UPDATE`
	if err = tx.QueryRowContext(ctx, query, gatewayRef).Scan(&txID, &userID, &amount, &state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	switch state {
	case models.TxStateCredited:
		// Повторная доставка callback, уже зачислено.
		return false, userID, amount, nil
	case models.TxStateFailed:
		return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, ErrTxNotCreditable)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET wallet = wallet + $1 WHERE user_id = $2`, amount, userID); err != nil {
		return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE wallet_transactions SET state = $1 WHERE tx_id = $2`,
		models.TxStateCredited, txID); err != nil {
		return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return false, 0, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return true, userID, amount, nil
}

// CreateDevTopup сразу зачисляет средства (метод dev), минуя шлюз.
// Баланс и запись журнала меняются в одной транзакции.
func (s *Storage) CreateDevTopup(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	const op = "storage.CreateDevTopup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET wallet = wallet + $1 WHERE user_id = $2`, amount, userID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var newID int64
	query := `INSERT INTO wallet_transactions (user_id, kind, method, amount, state, note)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING tx_id`
	if err = tx.QueryRowContext(ctx, query,
		userID, models.TxKindCredit, models.TxMethodDev, amount,
		models.TxStateCompleted, "dev topup").Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetBalance возвращает текущий баланс кошелька пользователя.
func (s *Storage) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	const op = "storage.GetBalance"
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var balance decimal.Decimal
	err := s.DB.QueryRowContext(ctx,
		`SELECT wallet FROM users WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// ListWalletTransactions возвращает журнал операций пользователя, новые первыми.
func (s *Storage) ListWalletTransactions(ctx context.Context, userID int64, limit, offset int) ([]*models.WalletTransaction, error) {
	const op = "storage.ListWalletTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT tx_id, user_id, kind, method, amount, state, gateway_ref, note, created_at
			  FROM wallet_transactions
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.WalletTransaction
	for rows.Next() {
		var item models.WalletTransaction
		if err := rows.Scan(&item.TxID, &item.UserID, &item.Kind, &item.Method,
			&item.Amount, &item.State, &item.GatewayRef, &item.Note, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
