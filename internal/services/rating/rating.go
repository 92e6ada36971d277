// Package rating реализует оценивание экспертов и пересчёт средней оценки.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// ErrNotSubscribed оценивать может только искатель, когда-либо покупавший
// подписку на этого эксперта.
var ErrNotSubscribed = errors.New("seeker has never subscribed to this expert")

type Repository interface {
	FindLatestSubscription(ctx context.Context, seekerID, expertID int64) (*models.Subscription, error)
	UpsertRating(ctx context.Context, rating models.Rating) (int64, error)
	RecomputeExpertRating(ctx context.Context, expertID int64) error
	ListRatingsForExpert(ctx context.Context, expertID int64) ([]*models.RatingWithSeeker, error)
	GetRatingSummary(ctx context.Context, expertID int64) (*models.RatingSummary, error)
}

// CacheInvalidator сбрасывает кэш публичного профиля эксперта.
type CacheInvalidator interface {
	Invalidate(key string) error
}

type RatingService struct {
	repo  Repository
	cache CacheInvalidator
	log   *slog.Logger
}

func New(repo Repository, cache CacheInvalidator, log *slog.Logger) *RatingService {
	return &RatingService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Rate сохраняет оценку эксперта. Оценка привязывается к последней подписке
// пары искатель/эксперт; повторная оценка обновляет существующую запись.
// Ошибка пересчёта средней оценки логируется, но не отменяет оценку.
func (s *RatingService) Rate(ctx context.Context, seekerID, expertID int64, value int, review *string) (int64, error) {
	const op = "services.rating.Rate"

	sub, err := s.repo.FindLatestSubscription(ctx, seekerID, expertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%s: %w", op, ErrNotSubscribed)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	ratingID, err := s.repo.UpsertRating(ctx, models.Rating{
		SubscriptionID: sub.SubscriptionID,
		SeekerID:       seekerID,
		ExpertID:       expertID,
		RatingValue:    value,
		Review:         review,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.RecomputeExpertRating(ctx, expertID); err != nil {
		s.log.Error("failed to recompute expert rating",
			slog.Int64("expert_id", expertID), sl.Err(err))
	}
	if err := s.cache.Invalidate(expertCacheKey(expertID)); err != nil {
		s.log.Error("failed to invalidate expert cache",
			slog.Int64("expert_id", expertID), sl.Err(err))
	}

	return ratingID, nil
}

// ListForExpert возвращает оценки эксперта вместе с агрегатом.
func (s *RatingService) ListForExpert(ctx context.Context, expertID int64) ([]*models.RatingWithSeeker, *models.RatingSummary, error) {
	const op = "services.rating.ListForExpert"

	items, err := s.repo.ListRatingsForExpert(ctx, expertID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	summary, err := s.repo.GetRatingSummary(ctx, expertID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, summary, nil
}

func expertCacheKey(expertID int64) string {
	return fmt.Sprintf("expert:%d", expertID)
}
