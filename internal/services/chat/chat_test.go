package chat

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListChatsForUser(ctx context.Context, userID int64) ([]*models.ChatListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatListItem), args.Error(1)
}
func (m *RepoMock) GetChatWithSubscription(ctx context.Context, chatID int64) (*models.Chat, *models.Subscription, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Chat), args.Get(1).(*models.Subscription), args.Error(2)
}
func (m *RepoMock) FindLiveSubscription(ctx context.Context, seekerID, expertID int64) (*models.Subscription, error) {
	args := m.Called(ctx, seekerID, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) FindChatBySubscription(ctx context.Context, subscriptionID int64) (*models.Chat, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}
func (m *RepoMock) CreateChat(ctx context.Context, subscriptionID int64) (*models.Chat, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}
func (m *RepoMock) ListMessages(ctx context.Context, chatID int64, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, chatID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}
func (m *RepoMock) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, userID int64, title, body string) {
	m.Called(ctx, userID, title, body)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func liveSub(seekerID, expertID int64) *models.Subscription {
	return &models.Subscription{
		SubscriptionID: 5,
		SeekerID:       seekerID,
		ExpertID:       expertID,
		Status:         models.SubStatusActive,
	}
}

func TestChatService_List_FiltersExpired(t *testing.T) {
	repo := new(RepoMock)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	repo.On("ListChatsForUser", mock.Anything, int64(7)).Return([]*models.ChatListItem{
		{ChatID: 1, Status: models.SubStatusActive, EndAt: &future},
		{ChatID: 2, Status: models.SubStatusActive, EndAt: &past},
		{ChatID: 3, Status: models.SubStatusActive, EndAt: nil},
	}, nil).Once()

	svc := New(repo, new(NotifierMock), newNoopLogger())

	chats, err := svc.List(context.Background(), 7)
	assert.NoError(t, err)
	assert.Len(t, chats, 2)
	assert.Equal(t, int64(1), chats[0].ChatID)
	assert.Equal(t, int64(3), chats[1].ChatID)

	repo.AssertExpectations(t)
}

func TestChatService_Open(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantChatID int64
		wantErr    error
	}{
		{
			name: "чат уже существует",
			setupMocks: func(r *RepoMock) {
				r.On("FindLiveSubscription", mock.Anything, int64(7), int64(42)).
					Return(liveSub(7, 42), nil).Once()
				r.On("FindChatBySubscription", mock.Anything, int64(5)).
					Return(&models.Chat{ChatID: 9, SubscriptionID: 5}, nil).Once()
			},
			wantChatID: 9,
		},
		{
			name: "чат создаётся при первом обращении",
			setupMocks: func(r *RepoMock) {
				r.On("FindLiveSubscription", mock.Anything, int64(7), int64(42)).
					Return(liveSub(7, 42), nil).Once()
				r.On("FindChatBySubscription", mock.Anything, int64(5)).
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateChat", mock.Anything, int64(5)).
					Return(&models.Chat{ChatID: 10, SubscriptionID: 5}, nil).Once()
			},
			wantChatID: 10,
		},
		{
			name: "нет действующей подписки",
			setupMocks: func(r *RepoMock) {
				r.On("FindLiveSubscription", mock.Anything, int64(7), int64(42)).
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrNotSubscribed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, new(NotifierMock), newNoopLogger())
			chat, err := svc.Open(context.Background(), 7, 42)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantChatID, chat.ChatID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestChatService_History_Access(t *testing.T) {
	expired := time.Now().Add(-time.Hour)

	tests := []struct {
		name       string
		userID     int64
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:   "участник читает историю",
			userID: 7,
			setupMocks: func(r *RepoMock) {
				r.On("GetChatWithSubscription", mock.Anything, int64(9)).
					Return(&models.Chat{ChatID: 9}, liveSub(7, 42), nil).Once()
				r.On("ListMessages", mock.Anything, int64(9), 50, 0).
					Return([]*models.Message{{MessageID: 1}}, nil).Once()
			},
		},
		{
			name:   "чат не найден",
			userID: 7,
			setupMocks: func(r *RepoMock) {
				r.On("GetChatWithSubscription", mock.Anything, int64(9)).
					Return(nil, nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrChatNotFound,
		},
		{
			name:   "посторонний пользователь",
			userID: 99,
			setupMocks: func(r *RepoMock) {
				r.On("GetChatWithSubscription", mock.Anything, int64(9)).
					Return(&models.Chat{ChatID: 9}, liveSub(7, 42), nil).Once()
			},
			wantErr: ErrNotParticipant,
		},
		{
			name:   "подписка истекла",
			userID: 7,
			setupMocks: func(r *RepoMock) {
				sub := liveSub(7, 42)
				sub.EndAt = &expired
				r.On("GetChatWithSubscription", mock.Anything, int64(9)).
					Return(&models.Chat{ChatID: 9}, sub, nil).Once()
			},
			wantErr: ErrNotSubscribed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, new(NotifierMock), newNoopLogger())
			_, err := svc.History(context.Background(), tt.userID, 9, 0, 0)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestChatService_Send_NotifiesPeer(t *testing.T) {
	tests := []struct {
		name       string
		senderID   int64
		wantPeerID int64
	}{
		{"искатель пишет эксперту", 7, 42},
		{"эксперт пишет искателю", 42, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			notifier := new(NotifierMock)

			repo.On("GetChatWithSubscription", mock.Anything, int64(9)).
				Return(&models.Chat{ChatID: 9}, liveSub(7, 42), nil).Once()
			repo.On("CreateMessage", mock.Anything, models.Message{
				ChatID:   9,
				SenderID: tt.senderID,
				Content:  "hello",
			}).Return(&models.Message{MessageID: 1, ChatID: 9, SenderID: tt.senderID, Content: "hello"}, nil).Once()
			notifier.On("Notify", mock.Anything, tt.wantPeerID, "New message", mock.Anything).Once()

			svc := New(repo, notifier, newNoopLogger())
			msg, err := svc.Send(context.Background(), tt.senderID, 9, models.SendMessageRequest{Content: "hello"})

			assert.NoError(t, err)
			assert.Equal(t, int64(1), msg.MessageID)
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}
