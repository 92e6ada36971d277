// Package notification реализует уведомления: запись в базу и публикацию
// события в очередь для почтового воркера.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/rabbitmq"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// ErrNotificationNotFound уведомление не найдено либо принадлежит другому пользователю.
var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int64, error)
	ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID int64) (int, error)
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// Publisher публикует событие в обменник уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

type NotificationService struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

func New(repo Repository, publisher Publisher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Notify создаёт уведомление и публикует событие для почтового воркера.
// Вызывается после успешных бизнес-операций; любые ошибки логируются
// и не влияют на результат вызвавшей операции.
func (s *NotificationService) Notify(ctx context.Context, userID int64, title, body string) {
	if _, err := s.repo.CreateNotification(ctx, models.Notification{
		UserID: userID,
		Title:  title,
		Body:   &body,
	}); err != nil {
		s.log.Error("failed to store notification",
			slog.Int64("user_id", userID), sl.Err(err))
		return
	}

	if s.publisher == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to load notification recipient",
			slog.Int64("user_id", userID), sl.Err(err))
		return
	}
	event := models.NotificationEvent{
		UserID: userID,
		Email:  user.Email,
		Title:  title,
		Body:   body,
	}
	if err := s.publisher.Publish(rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyEmail, event); err != nil {
		s.log.Error("failed to publish notification event",
			slog.Int64("user_id", userID), sl.Err(err))
	}
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListNotifications(ctx, userID, limit, offset)
}

// MarkRead помечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	const op = "services.notification.MarkRead"

	affected, err := s.repo.MarkNotificationRead(ctx, userID, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotificationNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotificationNotFound)
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными
// и возвращает количество обновлённых.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}
