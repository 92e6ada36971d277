package purchase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/subscription"
)

// MockService реализует интерфейс purchase.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Purchase(ctx context.Context, seekerID, expertID int64) (*models.PurchaseResult, error) {
	args := m.Called(ctx, seekerID, expertID)
	if res := args.Get(0); res != nil {
		return res.(*models.PurchaseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPurchaseHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		expertID       string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешная покупка подписки",
			expertID: "42",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, int64(7), int64(42)).Return(&models.PurchaseResult{
					Subscription: models.Subscription{SubscriptionID: 5, ExpertID: 42},
					ChatID:       9,
					TxID:         31,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"chat_id":9`,
		},
		{
			name:           "нет пользователя в контексте",
			expertID:       "42",
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:           "некорректный id эксперта в URL",
			expertID:       "abc",
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid expert id"`,
		},
		{
			name:     "эксперт недоступен для подписки",
			expertID: "42",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, int64(7), int64(42)).
					Return(nil, subscription.ErrExpertNotPurchasable)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"expert is not available for subscription"`,
		},
		{
			name:     "подписка уже действует",
			expertID: "42",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, int64(7), int64(42)).
					Return(nil, subscription.ErrDuplicateSubscription)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"active subscription already exists"`,
		},
		{
			name:     "недостаточно средств",
			expertID: "42",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, int64(7), int64(42)).
					Return(nil, subscription.ErrInsufficientBalance)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `"insufficient wallet balance"`,
		},
		{
			name:     "ошибка сервиса",
			expertID: "42",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, int64(7), int64(42)).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"could not purchase subscription"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/"+tt.expertID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("expertID", tt.expertID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserID, int64(7))
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
