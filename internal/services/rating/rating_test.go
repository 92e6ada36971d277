package rating

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindLatestSubscription(ctx context.Context, seekerID, expertID int64) (*models.Subscription, error) {
	args := m.Called(ctx, seekerID, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) UpsertRating(ctx context.Context, rating models.Rating) (int64, error) {
	args := m.Called(ctx, rating)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) RecomputeExpertRating(ctx context.Context, expertID int64) error {
	return m.Called(ctx, expertID).Error(0)
}
func (m *RepoMock) ListRatingsForExpert(ctx context.Context, expertID int64) ([]*models.RatingWithSeeker, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RatingWithSeeker), args.Error(1)
}
func (m *RepoMock) GetRatingSummary(ctx context.Context, expertID int64) (*models.RatingSummary, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingSummary), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRatingService_Rate(t *testing.T) {
	sub := &models.Subscription{SubscriptionID: 5, SeekerID: 7, ExpertID: 42}
	review := "very helpful"

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantID     int64
		wantErr    error
	}{
		{
			name: "успешная оценка с пересчётом и сбросом кэша",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("FindLatestSubscription", mock.Anything, int64(7), int64(42)).Return(sub, nil).Once()
				r.On("UpsertRating", mock.Anything, models.Rating{
					SubscriptionID: 5,
					SeekerID:       7,
					ExpertID:       42,
					RatingValue:    5,
					Review:         &review,
				}).Return(int64(3), nil).Once()
				r.On("RecomputeExpertRating", mock.Anything, int64(42)).Return(nil).Once()
				c.On("Invalidate", "expert:42").Return(nil).Once()
			},
			wantID: int64(3),
		},
		{
			name: "искатель никогда не покупал подписку",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("FindLatestSubscription", mock.Anything, int64(7), int64(42)).
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrNotSubscribed,
		},
		{
			name: "ошибка пересчёта не отменяет оценку",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("FindLatestSubscription", mock.Anything, int64(7), int64(42)).Return(sub, nil).Once()
				r.On("UpsertRating", mock.Anything, mock.Anything).Return(int64(4), nil).Once()
				r.On("RecomputeExpertRating", mock.Anything, int64(42)).
					Return(errors.New("deadlock")).Once()
				c.On("Invalidate", "expert:42").Return(nil).Once()
			},
			wantID: int64(4),
		},
		{
			name: "ошибка сброса кэша не отменяет оценку",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("FindLatestSubscription", mock.Anything, int64(7), int64(42)).Return(sub, nil).Once()
				r.On("UpsertRating", mock.Anything, mock.Anything).Return(int64(6), nil).Once()
				r.On("RecomputeExpertRating", mock.Anything, int64(42)).Return(nil).Once()
				c.On("Invalidate", "expert:42").Return(errors.New("redis down")).Once()
			},
			wantID: int64(6),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)

			svc := New(repo, cache, newNoopLogger())
			var reviewArg *string
			if tt.wantID == 3 {
				reviewArg = &review
			}
			got, err := svc.Rate(context.Background(), 7, 42, 5, reviewArg)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestRatingService_ListForExpert(t *testing.T) {
	repo := new(RepoMock)
	items := []*models.RatingWithSeeker{{Rating: models.Rating{RatingID: 1, RatingValue: 5}}}
	summary := &models.RatingSummary{Total: 1}
	repo.On("ListRatingsForExpert", mock.Anything, int64(42)).Return(items, nil).Once()
	repo.On("GetRatingSummary", mock.Anything, int64(42)).Return(summary, nil).Once()

	svc := New(repo, new(CacheMock), newNoopLogger())
	gotItems, gotSummary, err := svc.ListForExpert(context.Background(), 42)
	assert.NoError(t, err)
	assert.Equal(t, items, gotItems)
	assert.Equal(t, summary, gotSummary)
	repo.AssertExpectations(t)
}
