// Package chat реализует чаты между искателем и экспертом поверх подписок.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// Доменные ошибки сервиса чатов.
var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrNotParticipant = errors.New("user is not a chat participant")
	ErrNotSubscribed  = errors.New("no active subscription for this chat")
)

type Repository interface {
	ListChatsForUser(ctx context.Context, userID int64) ([]*models.ChatListItem, error)
	GetChatWithSubscription(ctx context.Context, chatID int64) (*models.Chat, *models.Subscription, error)
	FindLiveSubscription(ctx context.Context, seekerID, expertID int64) (*models.Subscription, error)
	FindChatBySubscription(ctx context.Context, subscriptionID int64) (*models.Chat, error)
	CreateChat(ctx context.Context, subscriptionID int64) (*models.Chat, error)
	ListMessages(ctx context.Context, chatID int64, limit, offset int) ([]*models.Message, error)
	CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error)
}

// Notifier уведомляет собеседника о новом сообщении, best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, body string)
}

type ChatService struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

func New(repo Repository, notifier Notifier, log *slog.Logger) *ChatService {
	return &ChatService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// List возвращает чаты пользователя по действующим подпискам.
func (s *ChatService) List(ctx context.Context, userID int64) ([]*models.ChatListItem, error) {
	const op = "services.chat.List"

	items, err := s.repo.ListChatsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	live := make([]*models.ChatListItem, 0, len(items))
	for _, item := range items {
		sub := models.Subscription{Status: item.Status, EndAt: item.EndAt}
		if sub.Live(now) {
			live = append(live, item)
		}
	}
	return live, nil
}

// Open возвращает чат искателя с экспертом по действующей подписке,
// создавая его при отсутствии.
func (s *ChatService) Open(ctx context.Context, seekerID, expertID int64) (*models.Chat, error) {
	const op = "services.chat.Open"

	sub, err := s.repo.FindLiveSubscription(ctx, seekerID, expertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotSubscribed)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	chat, err := s.repo.FindChatBySubscription(ctx, sub.SubscriptionID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	chat, err = s.repo.CreateChat(ctx, sub.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return chat, nil
}

// History возвращает сообщения чата. Доступ только участникам
// с действующей подпиской.
func (s *ChatService) History(ctx context.Context, userID, chatID int64, limit, offset int) ([]*models.Message, error) {
	const op = "services.chat.History"

	if _, err := s.authorize(ctx, userID, chatID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	messages, err := s.repo.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return messages, nil
}

// Send отправляет сообщение в чат и уведомляет собеседника.
func (s *ChatService) Send(ctx context.Context, userID, chatID int64, req models.SendMessageRequest) (*models.Message, error) {
	const op = "services.chat.Send"

	sub, err := s.authorize(ctx, userID, chatID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	msg, err := s.repo.CreateMessage(ctx, models.Message{
		ChatID:   chatID,
		SenderID: userID,
		Content:  req.Content,
		IsUrgent: req.IsUrgent,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	peerID := sub.SeekerID
	if userID == sub.SeekerID {
		peerID = sub.ExpertID
	}
	s.notifier.Notify(ctx, peerID, "New message",
		"You have a new message in your chat.")

	return msg, nil
}

// authorize проверяет, что пользователь — участник чата и подписка действует.
func (s *ChatService) authorize(ctx context.Context, userID, chatID int64) (*models.Subscription, error) {
	_, sub, err := s.repo.GetChatWithSubscription(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if userID != sub.SeekerID && userID != sub.ExpertID {
		return nil, ErrNotParticipant
	}
	if !sub.Live(time.Now()) {
		return nil, ErrNotSubscribed
	}
	return sub, nil
}
