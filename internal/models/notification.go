package models

import "time"

// Notification уведомление пользователя.
type Notification struct {
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	Body           *string   `json:"body"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationEvent событие, публикуемое в очередь для воркера-отправителя.
type NotificationEvent struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
