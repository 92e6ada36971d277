package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meetexpert/meetexpert/internal/models"
)

// ListChatsForUser возвращает чаты, где пользователь — искатель либо эксперт,
// с данными собеседника. Свежие чаты первыми.
func (s *Storage) ListChatsForUser(ctx context.Context, userID int64) ([]*models.ChatListItem, error) {
	const op = "storage.ListChatsForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.chat_id, c.created_at,
			      sub.subscription_id, sub.seeker_id, sub.expert_id, sub.status, sub.start_at, sub.end_at,
			      peer.user_id, peer.username, peer.first_name, peer.last_name, peer.avatar
			  FROM chats c
			  JOIN subscriptions sub ON sub.subscription_id = c.subscription_id
			  JOIN users peer ON peer.user_id = CASE
			      WHEN sub.seeker_id = $1 THEN sub.expert_id
			      ELSE sub.seeker_id
			  END
			  WHERE sub.seeker_id = $1 OR sub.expert_id = $1
			  ORDER BY c.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ChatListItem
	for rows.Next() {
		var item models.ChatListItem
		if err := rows.Scan(&item.ChatID, &item.CreatedAt,
			&item.SubscriptionID, &item.SeekerID, &item.ExpertID, &item.Status, &item.StartAt, &item.EndAt,
			&item.Peer.UserID, &item.Peer.Username, &item.Peer.FirstName,
			&item.Peer.LastName, &item.Peer.Avatar); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetChatWithSubscription возвращает чат вместе с подпиской, к которой он привязан.
// Нужен для проверки участия и актуальности доступа перед чтением или отправкой.
func (s *Storage) GetChatWithSubscription(ctx context.Context, chatID int64) (*models.Chat, *models.Subscription, error) {
	const op = "storage.GetChatWithSubscription"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.chat_id, c.subscription_id, c.created_at,
			      sub.subscription_id, sub.seeker_id, sub.expert_id, sub.plan,
			      sub.start_at, sub.end_at, sub.amount_paid, sub.status
			  FROM chats c
			  JOIN subscriptions sub ON sub.subscription_id = c.subscription_id
			  WHERE c.chat_id = $1`
	var chat models.Chat
	var sub models.Subscription
	err := s.DB.QueryRowContext(ctx, query, chatID).Scan(
		&chat.ChatID, &chat.SubscriptionID, &chat.CreatedAt,
		&sub.SubscriptionID, &sub.SeekerID, &sub.ExpertID, &sub.Plan,
		&sub.StartAt, &sub.EndAt, &sub.AmountPaid, &sub.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return &chat, &sub, nil
}

// FindChatBySubscription возвращает чат подписки, если он уже создан.
func (s *Storage) FindChatBySubscription(ctx context.Context, subscriptionID int64) (*models.Chat, error) {
	const op = "storage.FindChatBySubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT chat_id, subscription_id, created_at FROM chats WHERE subscription_id = $1`
	var chat models.Chat
	err := s.DB.QueryRowContext(ctx, query, subscriptionID).Scan(
		&chat.ChatID, &chat.SubscriptionID, &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &chat, nil
}

// CreateChat создаёт чат подписки. Гонка двух создающих разрешается
// уникальным ограничением: проигравший получает уже существующий чат.
func (s *Storage) CreateChat(ctx context.Context, subscriptionID int64) (*models.Chat, error) {
	const op = "storage.CreateChat"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO chats (subscription_id) VALUES ($1)
			  RETURNING chat_id, subscription_id, created_at`
	var chat models.Chat
	err := s.DB.QueryRowContext(ctx, query, subscriptionID).Scan(
		&chat.ChatID, &chat.SubscriptionID, &chat.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return s.FindChatBySubscription(ctx, subscriptionID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &chat, nil
}

// ListMessages возвращает сообщения чата в хронологическом порядке.
func (s *Storage) ListMessages(ctx context.Context, chatID int64, limit, offset int) ([]*models.Message, error) {
	const op = "storage.ListMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT message_id, chat_id, sender_id, content, has_attachment, is_urgent, created_at
			  FROM messages
			  WHERE chat_id = $1
			  ORDER BY created_at, message_id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(&item.MessageID, &item.ChatID, &item.SenderID, &item.Content,
			&item.HasAttachment, &item.IsUrgent, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateMessage сохраняет сообщение в чате.
func (s *Storage) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	const op = "storage.CreateMessage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO messages (chat_id, sender_id, content, has_attachment, is_urgent)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING message_id, created_at`
	err := s.DB.QueryRowContext(ctx, query,
		msg.ChatID, msg.SenderID, msg.Content, msg.HasAttachment, msg.IsUrgent).Scan(
		&msg.MessageID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &msg, nil
}
