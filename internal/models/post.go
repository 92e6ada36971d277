package models

import "time"

// Видимость публикации эксперта.
const (
	PostVisibilityPublic      = "public"
	PostVisibilitySubscribers = "subscribers"
)

// Post публикация эксперта в ленте.
type Post struct {
	PostID     int64      `json:"post_id"`
	ExpertID   int64      `json:"expert_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Visibility string     `json:"visibility"` // public или subscribers
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"-"`
}

// PostWithAuthor публикация вместе с публичными данными автора.
type PostWithAuthor struct {
	Post
	Author PublicUser `json:"author"`
}

// CreatePostRequest тело запроса на создание публикации.
type CreatePostRequest struct {
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public subscribers"`
}

// UserProfile публичный профиль пользователя.
type UserProfile struct {
	UserID     int64   `json:"user_id"`
	Username   string  `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Avatar     *string `json:"avatar"`
	CoverPhoto *string `json:"cover_photo"`
	Profession *string `json:"profession"`
	Bio        *string `json:"bio"`
}
