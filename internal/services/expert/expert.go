// Package expert реализует каталог экспертов и публичные профили
// с кэшированием в Redis.
package expert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// ErrExpertNotFound эксперт не найден или его учётная запись не активна.
var ErrExpertNotFound = errors.New("expert not found")

const profileCacheTTL = 5 * time.Minute

type Repository interface {
	ListExperts(ctx context.Context, filter models.ExpertFilter) ([]*models.ExpertCard, int, error)
	GetExpertProfile(ctx context.Context, expertID int64) (*models.ExpertProfile, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetRatingSummary(ctx context.Context, expertID int64) (*models.RatingSummary, error)
}

// Cache кэш публичных профилей экспертов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// PublicProfile публичный профиль эксперта: карточка плюс агрегат оценок.
type PublicProfile struct {
	Card    models.ExpertCard    `json:"card"`
	Ratings models.RatingSummary `json:"ratings"`
}

type ExpertService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

func New(repo Repository, cache Cache, log *slog.Logger) *ExpertService {
	return &ExpertService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает каталог экспертов по фильтру вместе с общим количеством.
func (s *ExpertService) List(ctx context.Context, filter models.ExpertFilter) ([]*models.ExpertCard, int, error) {
	const op = "services.expert.List"

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	items, total, err := s.repo.ListExperts(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return items, total, nil
}

// Get возвращает публичный профиль эксперта. Профиль кэшируется;
// промах кэша не мешает ответу, ошибка кэша логируется.
func (s *ExpertService) Get(ctx context.Context, expertID int64) (*PublicProfile, error) {
	const op = "services.expert.Get"

	key := fmt.Sprintf("expert:%d", expertID)
	var cached PublicProfile
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Error("expert cache read failed", slog.Int64("expert_id", expertID), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	profile, err := s.repo.GetExpertProfile(ctx, expertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrExpertNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUser(ctx, expertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrExpertNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.Status != models.UserStatusActive {
		return nil, fmt.Errorf("%s: %w", op, ErrExpertNotFound)
	}
	summary, err := s.repo.GetRatingSummary(ctx, expertID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &PublicProfile{
		Card: models.ExpertCard{
			ExpertID:      profile.ExpertID,
			PriceModel:    profile.PriceModel,
			PriceAmount:   profile.PriceAmount,
			Currency:      profile.Currency,
			OverallRating: profile.OverallRating,
			IsVerified:    profile.IsVerified,
			User: models.PublicUser{
				UserID:    user.UserID,
				Username:  user.Username,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Avatar:    user.Avatar,
			},
		},
		Ratings: *summary,
	}

	if err := s.cache.Set(key, result, profileCacheTTL); err != nil {
		s.log.Error("expert cache write failed", slog.Int64("expert_id", expertID), sl.Err(err))
	}
	return result, nil
}
