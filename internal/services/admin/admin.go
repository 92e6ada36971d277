// Package admin реализует операции админской панели: сводка, управление
// пользователями и отчёт по платежам.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// ErrUserNotFound пользователь не найден.
var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	GetAdminSummary(ctx context.Context) (*repository.AdminSummary, error)
	ListUsers(ctx context.Context, status, role string, limit, offset int) ([]*models.User, error)
	UpdateUserStatus(ctx context.Context, userID int64, status string) (int, error)
	ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error)
}

type AdminService struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *AdminService {
	return &AdminService{
		repo: repo,
		log:  log,
	}
}

// Summary возвращает сводные показатели платформы.
func (s *AdminService) Summary(ctx context.Context) (*repository.AdminSummary, error) {
	return s.repo.GetAdminSummary(ctx)
}

// ListUsers возвращает пользователей с фильтрами по статусу и роли.
func (s *AdminService) ListUsers(ctx context.Context, status, role string, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListUsers(ctx, status, role, limit, offset)
}

// BlockUser блокирует учётную запись.
func (s *AdminService) BlockUser(ctx context.Context, userID int64) error {
	return s.setStatus(ctx, userID, models.UserStatusBlocked)
}

// RemoveUser помечает учётную запись удалённой (soft delete).
func (s *AdminService) RemoveUser(ctx context.Context, userID int64) error {
	return s.setStatus(ctx, userID, models.UserStatusDeleted)
}

// RestoreUser возвращает учётную запись в активное состояние.
func (s *AdminService) RestoreUser(ctx context.Context, userID int64) error {
	return s.setStatus(ctx, userID, models.UserStatusActive)
}

func (s *AdminService) setStatus(ctx context.Context, userID int64, status string) error {
	const op = "services.admin.setStatus"

	affected, err := s.repo.UpdateUserStatus(ctx, userID, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	s.log.Info("user status updated",
		slog.Int64("user_id", userID), slog.String("status", status))
	return nil
}

// ListTransactions возвращает платежи за подписки для отчётности.
func (s *AdminService) ListTransactions(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListPayments(ctx, limit, offset)
}
