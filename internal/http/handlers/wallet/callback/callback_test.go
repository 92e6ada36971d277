package callback

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/services/wallet"
)

// MockService реализует интерфейс callback.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) HandleCallback(ctx context.Context, paymentID, statusFlag string) error {
	return m.Called(ctx, paymentID, statusFlag).Error(0)
}

func TestCallbackHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const (
		successURL = "http://front.local/wallet?topup=success"
		failURL    = "http://front.local/wallet?topup=failed"
	)

	tests := []struct {
		name        string
		url         string
		setupMock   func(*MockService)
		expectedURL string
	}{
		{
			name: "успешная оплата перенаправляет на страницу успеха",
			url:  "/wallet/bkash/callback?paymentID=TR001&status=success",
			setupMock: func(m *MockService) {
				m.On("HandleCallback", mock.Anything, "TR001", "success").Return(nil)
			},
			expectedURL: successURL,
		},
		{
			name: "отмена оплаты перенаправляет на страницу неудачи",
			url:  "/wallet/bkash/callback?paymentID=TR001&status=cancel",
			setupMock: func(m *MockService) {
				m.On("HandleCallback", mock.Anything, "TR001", "cancel").Return(wallet.ErrGateway)
			},
			expectedURL: failURL,
		},
		{
			name: "ошибка зачисления не отдаёт 500, только redirect",
			url:  "/wallet/bkash/callback?paymentID=TR404&status=success",
			setupMock: func(m *MockService) {
				m.On("HandleCallback", mock.Anything, "TR404", "success").Return(wallet.ErrTxNotFound)
			},
			expectedURL: failURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, successURL, failURL)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.expectedURL, w.Header().Get("Location"))

			mockService.AssertExpectations(t)
		})
	}
}
