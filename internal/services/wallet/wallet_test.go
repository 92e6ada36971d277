package wallet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/bkash"
	"github.com/meetexpert/meetexpert/internal/metrics"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateTopupTx(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) AttachGatewayRef(ctx context.Context, txID int64, gatewayRef string) error {
	return m.Called(ctx, txID, gatewayRef).Error(0)
}
func (m *RepoMock) MarkTopupFailed(ctx context.Context, gatewayRef string) (int, error) {
	args := m.Called(ctx, gatewayRef)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) CreditTopup(ctx context.Context, gatewayRef string) (bool, int64, decimal.Decimal, error) {
	args := m.Called(ctx, gatewayRef)
	return args.Bool(0), args.Get(1).(int64), args.Get(2).(decimal.Decimal), args.Error(3)
}
func (m *RepoMock) CreateDevTopup(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *RepoMock) ListWalletTransactions(ctx context.Context, userID int64, limit, offset int) ([]*models.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WalletTransaction), args.Error(1)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreatePayment(ctx context.Context, amount decimal.Decimal) (*bkash.CreatedPayment, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bkash.CreatedPayment), args.Error(1)
}
func (m *GatewayMock) ExecutePayment(ctx context.Context, paymentID string) (*bkash.ExecutedPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bkash.ExecutedPayment), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestWalletService_InitiateTopup(t *testing.T) {
	amount := decimal.NewFromInt(500)

	tests := []struct {
		name       string
		amount     decimal.Decimal
		setupMocks func(r *RepoMock, g *GatewayMock)
		wantURL    string
		wantErr    error
	}{
		{
			name:   "успешное начало пополнения",
			amount: amount,
			setupMocks: func(r *RepoMock, g *GatewayMock) {
				r.On("CreateTopupTx", mock.Anything, int64(7), amount).Return(int64(11), nil).Once()
				g.On("CreatePayment", mock.Anything, amount).Return(&bkash.CreatedPayment{
					PaymentID: "TR001",
					BkashURL:  "https://bkash.example/pay/TR001",
				}, nil).Once()
				r.On("AttachGatewayRef", mock.Anything, int64(11), "TR001").Return(nil).Once()
			},
			wantURL: "https://bkash.example/pay/TR001",
		},
		{
			name:       "нулевая сумма",
			amount:     decimal.Zero,
			setupMocks: func(_ *RepoMock, _ *GatewayMock) {},
			wantErr:    ErrInvalidAmount,
		},
		{
			name:   "шлюз недоступен, запись остаётся initiated",
			amount: amount,
			setupMocks: func(r *RepoMock, g *GatewayMock) {
				r.On("CreateTopupTx", mock.Anything, int64(7), amount).Return(int64(12), nil).Once()
				g.On("CreatePayment", mock.Anything, amount).Return(nil, errors.New("timeout")).Once()
			},
			wantErr: ErrGateway,
		},
		{
			name:   "шлюз вернул неполный ответ",
			amount: amount,
			setupMocks: func(r *RepoMock, g *GatewayMock) {
				r.On("CreateTopupTx", mock.Anything, int64(7), amount).Return(int64(13), nil).Once()
				g.On("CreatePayment", mock.Anything, amount).Return(&bkash.CreatedPayment{}, nil).Once()
			},
			wantErr: ErrGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gateway := new(GatewayMock)
			tt.setupMocks(repo, gateway)

			svc := New(repo, gateway, newNoopLogger())
			url, err := svc.InitiateTopup(context.Background(), 7, tt.amount)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
			repo.AssertExpectations(t)
			gateway.AssertExpectations(t)
		})
	}
}

func TestWalletService_HandleCallback(t *testing.T) {
	amount := decimal.NewFromInt(500)
	executed := &bkash.ExecutedPayment{PaymentID: "TR001", TrxID: "8X7ABC", Amount: "500.00"}

	tests := []struct {
		name       string
		paymentID  string
		statusFlag string
		setupMocks func(r *RepoMock, g *GatewayMock)
		wantErr    error
	}{
		{
			name:       "успешное зачисление",
			paymentID:  "TR001",
			statusFlag: "success",
			setupMocks: func(r *RepoMock, g *GatewayMock) {
				g.On("ExecutePayment", mock.Anything, "TR001").Return(executed, nil).Once()
				r.On("CreditTopup", mock.Anything, "TR001").Return(true, int64(7), amount, nil).Once()
			},
		},
		{
			name:       "повторная доставка callback не зачисляет дважды",
			paymentID:  "TR001",
			statusFlag: "success",
			setupMocks: func(r *RepoMock, g *GatewayMock) {
				g.On("ExecutePayment", mock.Anything, "TR001").Return(executed, nil).Once()
				r.On("CreditTopup", mock.Anything, "TR001").Return(false, int64(0), decimal.Zero, nil).Once()
			},
		},
		{
			name:       "отмена на стороне шлюза помечает запись failed",
			paymentID:  "TR001",
			statusFlag: "cancel",
			setupMocks: func(r *RepoMock, _ *GatewayMock) {
				r.On("MarkTopupFailed", mock.Anything, "TR001").Return(1, nil).Once()
			},
			wantErr: ErrGateway,
		},
		{
			name:       "ошибка execute помечает запись failed",
			paymentID:  "TR001",
			statusFlag: "success",
			setupMocks: func(r *RepoMock, g *GatewayMock) {
				g.On("ExecutePayment", mock.Anything, "TR001").Return(nil, bkash.ErrPaymentFailed).Once()
				r.On("MarkTopupFailed", mock.Anything, "TR001").Return(1, nil).Once()
			},
			wantErr: ErrGateway,
		},
		{
			name:       "неизвестный paymentID",
			paymentID:  "TR404",
			statusFlag: "success",
			setupMocks: func(r *RepoMock, g *GatewayMock) {
				g.On("ExecutePayment", mock.Anything, "TR404").Return(executed, nil).Once()
				r.On("CreditTopup", mock.Anything, "TR404").
					Return(false, int64(0), decimal.Zero, repository.ErrNotFound).Once()
			},
			wantErr: ErrTxNotFound,
		},
		{
			name:       "пустой paymentID",
			paymentID:  "",
			statusFlag: "success",
			setupMocks: func(_ *RepoMock, _ *GatewayMock) {},
			wantErr:    ErrTxNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gateway := new(GatewayMock)
			tt.setupMocks(repo, gateway)

			svc := New(repo, gateway, newNoopLogger())
			err := svc.HandleCallback(context.Background(), tt.paymentID, tt.statusFlag)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			gateway.AssertExpectations(t)
		})
	}
}

func TestWalletService_HandleCallback_FailedMetric(t *testing.T) {
	before := testutil.ToFloat64(metrics.TopupsFailed)

	// Отмена по неизвестному paymentID не двигает счётчик.
	repo := new(RepoMock)
	repo.On("MarkTopupFailed", mock.Anything, "TR404").Return(0, nil).Once()
	svc := New(repo, new(GatewayMock), newNoopLogger())
	err := svc.HandleCallback(context.Background(), "TR404", "cancel")
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, before, testutil.ToFloat64(metrics.TopupsFailed))
	repo.AssertExpectations(t)

	// Отмена существующего платежа двигает счётчик на единицу.
	repo = new(RepoMock)
	repo.On("MarkTopupFailed", mock.Anything, "TR001").Return(1, nil).Once()
	svc = New(repo, new(GatewayMock), newNoopLogger())
	err = svc.HandleCallback(context.Background(), "TR001", "cancel")
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TopupsFailed))
	repo.AssertExpectations(t)
}

func TestWalletService_DevTopup(t *testing.T) {
	repo := new(RepoMock)
	gateway := new(GatewayMock)
	amount := decimal.NewFromInt(100)
	repo.On("CreateDevTopup", mock.Anything, int64(7), amount).Return(int64(21), nil).Once()

	svc := New(repo, gateway, newNoopLogger())

	txID, err := svc.DevTopup(context.Background(), 7, amount)
	assert.NoError(t, err)
	assert.Equal(t, int64(21), txID)

	_, err = svc.DevTopup(context.Background(), 7, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	repo.AssertExpectations(t)
}

func TestWalletService_ListTransactions_LimitClamp(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListWalletTransactions", mock.Anything, int64(7), 20, 0).
		Return([]*models.WalletTransaction{}, nil).Twice()

	svc := New(repo, new(GatewayMock), newNoopLogger())

	_, err := svc.ListTransactions(context.Background(), 7, 0, 0)
	assert.NoError(t, err)
	_, err = svc.ListTransactions(context.Background(), 7, 500, 0)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}
