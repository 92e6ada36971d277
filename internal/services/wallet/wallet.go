// Package wallet реализует операции кошелька: пополнение через bKash,
// обработку callback шлюза и чтение журнала операций.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/bkash"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/metrics"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// Доменные ошибки сервиса кошелька.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrGateway       = errors.New("payment gateway error")
	ErrTxNotFound    = errors.New("wallet transaction not found")
)

type Repository interface {
	CreateTopupTx(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	AttachGatewayRef(ctx context.Context, txID int64, gatewayRef string) error
	MarkTopupFailed(ctx context.Context, gatewayRef string) (int, error)
	CreditTopup(ctx context.Context, gatewayRef string) (bool, int64, decimal.Decimal, error)
	CreateDevTopup(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	ListWalletTransactions(ctx context.Context, userID int64, limit, offset int) ([]*models.WalletTransaction, error)
}

// Gateway клиент платёжного шлюза.
type Gateway interface {
	CreatePayment(ctx context.Context, amount decimal.Decimal) (*bkash.CreatedPayment, error)
	ExecutePayment(ctx context.Context, paymentID string) (*bkash.ExecutedPayment, error)
}

type WalletService struct {
	repo    Repository
	gateway Gateway
	log     *slog.Logger
}

func New(repo Repository, gateway Gateway, log *slog.Logger) *WalletService {
	return &WalletService{
		repo:    repo,
		gateway: gateway,
		log:     log,
	}
}

// InitiateTopup начинает пополнение кошелька: создаёт запись журнала,
// регистрирует платёж в шлюзе и возвращает URL страницы оплаты.
// Запись остаётся initiated, если шлюз не ответил платёжной ссылкой.
func (s *WalletService) InitiateTopup(ctx context.Context, userID int64, amount decimal.Decimal) (string, error) {
	const op = "services.wallet.InitiateTopup"

	if amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	txID, err := s.repo.CreateTopupTx(ctx, userID, amount)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.gateway.CreatePayment(ctx, amount)
	if err != nil {
		s.log.Error("gateway create payment failed",
			slog.Int64("tx_id", txID), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrGateway)
	}
	if created.PaymentID == "" || created.BkashURL == "" {
		s.log.Error("gateway returned incomplete payment", slog.Int64("tx_id", txID))
		return "", fmt.Errorf("%s: %w", op, ErrGateway)
	}

	if err := s.repo.AttachGatewayRef(ctx, txID, created.PaymentID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return created.BkashURL, nil
}

// HandleCallback обрабатывает возврат плательщика со страницы шлюза.
// Неуспешный статус или неуспешное подтверждение — запись помечается failed
// и возвращается ErrGateway. Успех зачисляется атомарно; повторная доставка
// для уже зачисленной записи — no-op.
func (s *WalletService) HandleCallback(ctx context.Context, paymentID, statusFlag string) error {
	const op = "services.wallet.HandleCallback"

	if paymentID == "" {
		return fmt.Errorf("%s: %w", op, ErrTxNotFound)
	}

	if statusFlag != "success" {
		s.markFailed(ctx, paymentID)
		return fmt.Errorf("%s: callback status %q: %w", op, statusFlag, ErrGateway)
	}

	if _, err := s.gateway.ExecutePayment(ctx, paymentID); err != nil {
		s.log.Error("gateway execute payment failed",
			slog.String("payment_id", paymentID), sl.Err(err))
		s.markFailed(ctx, paymentID)
		return fmt.Errorf("%s: %w", op, ErrGateway)
	}

	applied, userID, amount, err := s.repo.CreditTopup(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrTxNotFound)
		}
		if errors.Is(err, repository.ErrTxNotCreditable) {
			return fmt.Errorf("%s: %w", op, ErrGateway)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if applied {
		metrics.TopupsCredited.Inc()
		s.log.Info("wallet topup credited",
			slog.Int64("user_id", userID),
			slog.String("amount", amount.StringFixed(2)))
	}
	return nil
}

func (s *WalletService) markFailed(ctx context.Context, paymentID string) {
	affected, err := s.repo.MarkTopupFailed(ctx, paymentID)
	if err != nil {
		s.log.Error("failed to mark topup failed",
			slog.String("payment_id", paymentID), sl.Err(err))
		return
	}
	if affected > 0 {
		metrics.TopupsFailed.Inc()
	}
}

// DevTopup сразу зачисляет средства, минуя шлюз. Включается флагом конфига.
func (s *WalletService) DevTopup(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	const op = "services.wallet.DevTopup"

	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}
	txID, err := s.repo.CreateDevTopup(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return txID, nil
}

// Balance возвращает текущий баланс кошелька.
func (s *WalletService) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.GetBalance(ctx, userID)
}

// ListTransactions возвращает журнал операций кошелька.
func (s *WalletService) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]*models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListWalletTransactions(ctx, userID, limit, offset)
}
