package expertrequest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateExpertRequest(ctx context.Context, req models.ExpertRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) FindPendingExpertRequest(ctx context.Context, userID int64) (*models.ExpertRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExpertRequest), args.Error(1)
}
func (m *RepoMock) ListExpertRequestsByUser(ctx context.Context, userID int64) ([]*models.ExpertRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpertRequest), args.Error(1)
}
func (m *RepoMock) ListExpertRequests(ctx context.Context, status string, limit, offset int) ([]*models.ExpertRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpertRequest), args.Error(1)
}
func (m *RepoMock) DecideExpertRequest(ctx context.Context, requestID int64, status string, adminMessage *string) (*models.ExpertRequest, error) {
	args := m.Called(ctx, requestID, status, adminMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExpertRequest), args.Error(1)
}
func (m *RepoMock) UpsertExpertProfile(ctx context.Context, profile models.ExpertProfile) error {
	return m.Called(ctx, profile).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, userID int64, title, body string) {
	m.Called(ctx, userID, title, body)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestExpertRequestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        models.CreateExpertRequestRequest
		setupMocks func(r *RepoMock)
		wantID     int64
		wantErr    error
	}{
		{
			name: "успешная подача заявки",
			req: models.CreateExpertRequestRequest{
				Skill:       "Go backend",
				Description: "10 years of experience",
				Company:     "Acme",
				ProofURLs:   []string{"https://example.com/cv.pdf"},
			},
			setupMocks: func(r *RepoMock) {
				r.On("FindPendingExpertRequest", mock.Anything, int64(7)).
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateExpertRequest", mock.Anything, mock.MatchedBy(func(rec models.ExpertRequest) bool {
					return rec.UserID == 7 &&
						rec.Status == "pending" &&
						rec.Company != nil && *rec.Company == "Acme" &&
						rec.Position == nil &&
						rec.ProofURLs != nil && *rec.ProofURLs == `["https://example.com/cv.pdf"]`
				})).Return(int64(31), nil).Once()
			},
			wantID: 31,
		},
		{
			name: "уже есть нерассмотренная заявка",
			req:  models.CreateExpertRequestRequest{Skill: "Go backend", Description: "again"},
			setupMocks: func(r *RepoMock) {
				r.On("FindPendingExpertRequest", mock.Anything, int64(7)).
					Return(&models.ExpertRequest{RequestID: 30, Status: "pending"}, nil).Once()
			},
			wantErr: ErrPendingRequestExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, new(NotifierMock), newNoopLogger())
			requestID, err := svc.Create(context.Background(), 7, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, requestID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestExpertRequestService_Decide(t *testing.T) {
	price := decimal.NewFromInt(900)
	decided := &models.ExpertRequest{RequestID: 31, UserID: 7, Status: "approved"}

	tests := []struct {
		name       string
		decision   Decision
		setupMocks func(r *RepoMock, n *NotifierMock)
		wantErr    error
	}{
		{
			name: "одобрение создаёт верифицированный профиль",
			decision: Decision{
				Approve:     true,
				PriceModel:  models.PlanMonthly,
				PriceAmount: price,
			},
			setupMocks: func(r *RepoMock, n *NotifierMock) {
				r.On("DecideExpertRequest", mock.Anything, int64(31), "approved", (*string)(nil)).
					Return(decided, nil).Once()
				r.On("UpsertExpertProfile", mock.Anything, models.ExpertProfile{
					ExpertID:    7,
					PriceModel:  models.PlanMonthly,
					PriceAmount: price,
					Currency:    "BDT",
					IsVerified:  true,
				}).Return(nil).Once()
				n.On("Notify", mock.Anything, int64(7), "Expert request approved", mock.Anything).Once()
			},
		},
		{
			name: "отклонение не трогает профиль",
			decision: Decision{
				Approve:      false,
				AdminMessage: "not enough proof",
			},
			setupMocks: func(r *RepoMock, n *NotifierMock) {
				msg := "not enough proof"
				rejected := &models.ExpertRequest{RequestID: 31, UserID: 7, Status: "rejected"}
				r.On("DecideExpertRequest", mock.Anything, int64(31), "rejected", &msg).
					Return(rejected, nil).Once()
				n.On("Notify", mock.Anything, int64(7), "Expert request rejected", mock.Anything).Once()
			},
		},
		{
			name: "одобрение без цены отклоняется",
			decision: Decision{
				Approve:    true,
				PriceModel: models.PlanMonthly,
			},
			setupMocks: func(_ *RepoMock, _ *NotifierMock) {},
			wantErr:    ErrInvalidDecision,
		},
		{
			name: "одобрение с неизвестной моделью отклоняется",
			decision: Decision{
				Approve:     true,
				PriceModel:  "weekly",
				PriceAmount: price,
			},
			setupMocks: func(_ *RepoMock, _ *NotifierMock) {},
			wantErr:    ErrInvalidDecision,
		},
		{
			name: "заявка не найдена или уже рассмотрена",
			decision: Decision{
				Approve:     true,
				PriceModel:  models.PlanMonthly,
				PriceAmount: price,
			},
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("DecideExpertRequest", mock.Anything, int64(31), "approved", (*string)(nil)).
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrRequestNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			notifier := new(NotifierMock)
			tt.setupMocks(repo, notifier)

			svc := New(repo, notifier, newNoopLogger())
			req, err := svc.Decide(context.Background(), 31, tt.decision)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, req)
			}
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}
