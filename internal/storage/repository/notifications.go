package repository

import (
	"context"
	"fmt"

	"github.com/meetexpert/meetexpert/internal/models"
)

// CreateNotification сохраняет уведомление пользователя.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (int64, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (user_id, title, body)
			  VALUES ($1, $2, $3)
			  RETURNING notification_id`
	var newID int64
	if err := s.DB.QueryRowContext(ctx, query, n.UserID, n.Title, n.Body).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListNotifications возвращает уведомления пользователя, новые первыми.
func (s *Storage) ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT notification_id, user_id, title, body, is_read, created_at
			  FROM notifications
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

	var result []*models.Notification
	for rows.Next() {
		var item models.Notification
		if err := rows.Scan(&item.NotificationID, &item.UserID, &item.Title,
			&item.Body, &item.IsRead, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkNotificationRead помечает уведомление прочитанным.
// Чужие уведомления не затрагиваются.
func (s *Storage) MarkNotificationRead(ctx context.Context, userID, notificationID int64) (int, error) {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET is_read = TRUE
			  WHERE notification_id = $1 AND user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID int64) (int, error) {
	const op = "storage.MarkAllNotificationsRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET is_read = TRUE
			  WHERE user_id = $1 AND is_read = FALSE`
	result, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
