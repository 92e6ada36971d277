package post

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetExpertProfile(ctx context.Context, expertID int64) (*models.ExpertProfile, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExpertProfile), args.Error(1)
}
func (m *RepoMock) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}
func (m *RepoMock) ListPublicPosts(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PostWithAuthor), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestPostService_Create(t *testing.T) {
	profile := &models.ExpertProfile{ExpertID: 42, PriceModel: models.PlanPerChat}

	tests := []struct {
		name       string
		req        models.CreatePostRequest
		setupMocks func(r *RepoMock)
		wantErr    error
		wantVis    string
	}{
		{
			name: "эксперт публикует пост",
			req:  models.CreatePostRequest{Title: "Go tips", Content: "Use contexts."},
			setupMocks: func(r *RepoMock) {
				r.On("GetExpertProfile", mock.Anything, int64(42)).Return(profile, nil).Once()
				r.On("CreatePost", mock.Anything, models.Post{
					ExpertID:   42,
					Title:      "Go tips",
					Content:    "Use contexts.",
					Visibility: models.PostVisibilityPublic,
				}).Return(&models.Post{PostID: 1, ExpertID: 42, Visibility: models.PostVisibilityPublic}, nil).Once()
			},
			wantVis: models.PostVisibilityPublic,
		},
		{
			name: "видимость subscribers сохраняется",
			req: models.CreatePostRequest{
				Title:      "For subscribers",
				Content:    "Private content.",
				Visibility: models.PostVisibilitySubscribers,
			},
			setupMocks: func(r *RepoMock) {
				r.On("GetExpertProfile", mock.Anything, int64(42)).Return(profile, nil).Once()
				r.On("CreatePost", mock.Anything, models.Post{
					ExpertID:   42,
					Title:      "For subscribers",
					Content:    "Private content.",
					Visibility: models.PostVisibilitySubscribers,
				}).Return(&models.Post{PostID: 2, ExpertID: 42, Visibility: models.PostVisibilitySubscribers}, nil).Once()
			},
			wantVis: models.PostVisibilitySubscribers,
		},
		{
			name: "не эксперт",
			req:  models.CreatePostRequest{Title: "Go tips", Content: "Use contexts."},
			setupMocks: func(r *RepoMock) {
				r.On("GetExpertProfile", mock.Anything, int64(42)).
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrNotExpert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, newNoopLogger())
			created, err := svc.Create(context.Background(), 42, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantVis, created.Visibility)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPostService_ListPublic_LimitClamp(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListPublicPosts", mock.Anything, 20, 0).
		Return([]*models.PostWithAuthor{}, nil).Twice()

	svc := New(repo, newNoopLogger())

	_, err := svc.ListPublic(context.Background(), 0, 0)
	assert.NoError(t, err)
	_, err = svc.ListPublic(context.Background(), 500, 0)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}
