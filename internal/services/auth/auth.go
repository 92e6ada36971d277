// Package auth реализует регистрацию, вход и выдачу JWT токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetexpert/meetexpert/internal/lib/jwt"
	"github.com/meetexpert/meetexpert/internal/lib/password"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// Доменные ошибки сервиса аутентификации.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrUserNotFound       = errors.New("user not found")
)

type Repository interface {
	RegisterUser(ctx context.Context, user models.User) (int64, error)
	FindUserByEmailOrUsername(ctx context.Context, emailOrUsername string) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

type AuthService struct {
	repo  Repository
	maker jwt.Maker
	log   *slog.Logger
}

func New(repo Repository, maker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:  repo,
		maker: maker,
		log:   log,
	}
}

// Register создает учетную запись и возвращает идентификатор пользователя.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (int64, error) {
	const op = "services.auth.Register"

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	userID, err := s.repo.RegisterUser(ctx, models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "user",
		Status:       models.UserStatusActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return 0, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return userID, nil
}

// Login проверяет учетные данные и возвращает JWT токен вместе с пользователем.
// Вход по email либо username; заблокированная учётная запись — ErrUserBlocked.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.repo.FindUserByEmailOrUsername(ctx, req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.Status == models.UserStatusDeleted {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if user.Status == models.UserStatusBlocked {
		return "", nil, fmt.Errorf("%s: %w", op, ErrUserBlocked)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.maker.GenerateToken(user.UserID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// Me возвращает пользователя по идентификатору из токена.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.GetUser(ctx, userID)
}

// Profile возвращает публичный профиль пользователя.
// Удалённые учётные записи не показываются.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	const op = "services.auth.Profile"

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.Status == models.UserStatusDeleted {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return &models.UserProfile{
		UserID:     user.UserID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Avatar:     user.Avatar,
		CoverPhoto: user.CoverPhoto,
		Profession: user.Profession,
		Bio:        user.Bio,
	}, nil
}
