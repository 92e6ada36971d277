// Package post реализует ленту публикаций экспертов.
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// ErrNotExpert публикации доступны только пользователям с профилем эксперта.
var ErrNotExpert = errors.New("user is not an expert")

type Repository interface {
	GetExpertProfile(ctx context.Context, expertID int64) (*models.ExpertProfile, error)
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	ListPublicPosts(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error)
}

type PostService struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *PostService {
	return &PostService{
		repo: repo,
		log:  log,
	}
}

// Create сохраняет публикацию от имени эксперта. Видимость по умолчанию
// public; значение subscribers оставляет запись вне публичной ленты.
func (s *PostService) Create(ctx context.Context, userID int64, req models.CreatePostRequest) (*models.Post, error) {
	const op = "services.post.Create"

	if _, err := s.repo.GetExpertProfile(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotExpert)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	visibility := models.PostVisibilityPublic
	if req.Visibility == models.PostVisibilitySubscribers {
		visibility = models.PostVisibilitySubscribers
	}
	created, err := s.repo.CreatePost(ctx, models.Post{
		ExpertID:   userID,
		Title:      req.Title,
		Content:    req.Content,
		Visibility: visibility,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// ListPublic возвращает публичную ленту публикаций.
func (s *PostService) ListPublic(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListPublicPosts(ctx, limit, offset)
}
