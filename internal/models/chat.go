package models

import "time"

// Chat чат один-к-одному с подпиской; создаётся лениво при её активации.
type Chat struct {
	ChatID         int64     `json:"chat_id"`
	SubscriptionID int64     `json:"subscription_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatListItem элемент списка чатов пользователя с данными собеседника.
type ChatListItem struct {
	ChatID         int64      `json:"chat_id"`
	CreatedAt      time.Time  `json:"created_at"`
	SubscriptionID int64      `json:"subscription_id"`
	SeekerID       int64      `json:"seeker_id"`
	ExpertID       int64      `json:"expert_id"`
	Status         string     `json:"status"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          *time.Time `json:"end_at"`
	Peer           PublicUser `json:"peer"`
}

// Message сообщение в чате.
type Message struct {
	MessageID     int64     `json:"message_id"`
	ChatID        int64     `json:"chat_id"`
	SenderID      int64     `json:"sender_id"`
	Content       string    `json:"content"`
	HasAttachment bool      `json:"has_attachment"`
	IsUrgent      bool      `json:"is_urgent"`
	CreatedAt     time.Time `json:"created_at"`
}

// SendMessageRequest тело запроса на отправку сообщения.
type SendMessageRequest struct {
	Content  string `json:"content" validate:"required"`
	IsUrgent bool   `json:"is_urgent,omitempty"`
}

// OpenChatRequest тело запроса на открытие чата с экспертом.
type OpenChatRequest struct {
	ExpertID int64 `json:"expert_id" validate:"required,gt=0"`
}
