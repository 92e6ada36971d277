package login

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/auth"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	user := &models.User{
		UserID:    7,
		Username:  "ayesha",
		FirstName: "Ayesha",
		LastName:  "Rahman",
		Role:      "user",
		Status:    models.UserStatusActive,
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный вход",
			body: `{"email_or_username":"ayesha","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, models.LoginRequest{
					EmailOrUsername: "ayesha",
					Password:        "secret123",
				}).Return("token123", user, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"token123"`,
		},
		{
			name: "неверные учетные данные",
			body: `{"email_or_username":"ayesha","password":"wrong"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, mock.Anything).
					Return("", nil, auth.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid credentials"`,
		},
		{
			name: "заблокированная учётная запись",
			body: `{"email_or_username":"ayesha","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, mock.Anything).
					Return("", nil, auth.ErrUserBlocked)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"account is blocked"`,
		},
		{
			name:           "ошибка валидации: нет пароля",
			body:           `{"email_or_username":"ayesha"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
