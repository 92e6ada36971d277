package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/lib/jwt"
	"github.com/meetexpert/meetexpert/internal/lib/password"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RegisterUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) FindUserByEmailOrUsername(ctx context.Context, emailOrUsername string) (*models.User, error) {
	args := m.Called(ctx, emailOrUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MakerMock struct{ mock.Mock }

func (m *MakerMock) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}
func (m *MakerMock) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAuthService_Register(t *testing.T) {
	req := models.RegisterRequest{
		FirstName: "Ayesha",
		LastName:  "Rahman",
		Username:  "ayesha",
		Email:     "ayesha@example.com",
		Password:  "secret123",
	}

	t.Run("успешная регистрация", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Username == req.Username &&
				u.Email == req.Email &&
				u.Role == "user" &&
				u.Status == models.UserStatusActive &&
				password.CompareHash(u.PasswordHash, req.Password) == nil
		})).Return(int64(7), nil).Once()

		svc := New(repo, new(MakerMock), newNoopLogger())
		userID, err := svc.Register(context.Background(), req)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), userID)
		repo.AssertExpectations(t)
	})

	t.Run("занятый email или username", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("RegisterUser", mock.Anything, mock.Anything).
			Return(int64(0), repository.ErrUserExists).Once()

		svc := New(repo, new(MakerMock), newNoopLogger())
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, ErrUserExists)
		repo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	assert.NoError(t, err)

	activeUser := &models.User{
		UserID:       7,
		Username:     "ayesha",
		Email:        "ayesha@example.com",
		PasswordHash: hash,
		Role:         "user",
		Status:       models.UserStatusActive,
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, mk *MakerMock)
		password   string
		wantToken  string
		wantErr    error
	}{
		{
			name: "успешный вход",
			setupMocks: func(r *RepoMock, mk *MakerMock) {
				r.On("FindUserByEmailOrUsername", mock.Anything, "ayesha").Return(activeUser, nil).Once()
				mk.On("GenerateToken", int64(7), "user").Return("token123", nil).Once()
			},
			password:  "secret123",
			wantToken: "token123",
		},
		{
			name: "неизвестный пользователь",
			setupMocks: func(r *RepoMock, _ *MakerMock) {
				r.On("FindUserByEmailOrUsername", mock.Anything, "ayesha").
					Return(nil, repository.ErrNotFound).Once()
			},
			password: "secret123",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name: "неверный пароль",
			setupMocks: func(r *RepoMock, _ *MakerMock) {
				r.On("FindUserByEmailOrUsername", mock.Anything, "ayesha").Return(activeUser, nil).Once()
			},
			password: "wrongpass",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name: "заблокированная учётная запись",
			setupMocks: func(r *RepoMock, _ *MakerMock) {
				blocked := *activeUser
				blocked.Status = models.UserStatusBlocked
				r.On("FindUserByEmailOrUsername", mock.Anything, "ayesha").Return(&blocked, nil).Once()
			},
			password: "secret123",
			wantErr:  ErrUserBlocked,
		},
		{
			name: "удалённая учётная запись ведёт себя как несуществующая",
			setupMocks: func(r *RepoMock, _ *MakerMock) {
				deleted := *activeUser
				deleted.Status = models.UserStatusDeleted
				r.On("FindUserByEmailOrUsername", mock.Anything, "ayesha").Return(&deleted, nil).Once()
			},
			password: "secret123",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			maker := new(MakerMock)
			tt.setupMocks(repo, maker)

			svc := New(repo, maker, newNoopLogger())
			token, user, err := svc.Login(context.Background(), models.LoginRequest{
				EmailOrUsername: "ayesha",
				Password:        tt.password,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, activeUser, user)
			}
			repo.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_Profile(t *testing.T) {
	bio := "Go engineer"
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name: "публичный профиль активного пользователя",
			setupMocks: func(r *RepoMock) {
				r.On("GetUser", mock.Anything, int64(7)).Return(&models.User{
					UserID:    7,
					Username:  "ayesha",
					FirstName: "Ayesha",
					LastName:  "Rahman",
					Status:    models.UserStatusActive,
					Bio:       &bio,
				}, nil).Once()
			},
		},
		{
			name: "пользователь не найден",
			setupMocks: func(r *RepoMock) {
				r.On("GetUser", mock.Anything, int64(7)).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "удалённая учётная запись скрыта",
			setupMocks: func(r *RepoMock) {
				r.On("GetUser", mock.Anything, int64(7)).Return(&models.User{
					UserID: 7,
					Status: models.UserStatusDeleted,
				}, nil).Once()
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, new(MakerMock), newNoopLogger())
			profile, err := svc.Profile(context.Background(), 7)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "ayesha", profile.Username)
				assert.Equal(t, &bio, profile.Bio)
			}
			repo.AssertExpectations(t)
		})
	}
}
