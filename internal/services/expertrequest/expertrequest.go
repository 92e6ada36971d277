// Package expertrequest реализует заявки пользователей на статус эксперта
// и их рассмотрение администратором.
package expertrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// Доменные ошибки сервиса заявок.
var (
	ErrPendingRequestExists = errors.New("pending expert request already exists")
	ErrRequestNotFound      = errors.New("expert request not found")
	ErrInvalidDecision      = errors.New("invalid decision")
)

type Repository interface {
	CreateExpertRequest(ctx context.Context, req models.ExpertRequest) (int64, error)
	FindPendingExpertRequest(ctx context.Context, userID int64) (*models.ExpertRequest, error)
	ListExpertRequestsByUser(ctx context.Context, userID int64) ([]*models.ExpertRequest, error)
	ListExpertRequests(ctx context.Context, status string, limit, offset int) ([]*models.ExpertRequest, error)
	DecideExpertRequest(ctx context.Context, requestID int64, status string, adminMessage *string) (*models.ExpertRequest, error)
	UpsertExpertProfile(ctx context.Context, profile models.ExpertProfile) error
}

// Notifier уведомляет заявителя об итоге рассмотрения, best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, body string)
}

// Decision решение администратора по заявке. При одобрении администратор
// задаёт модель и цену подписки будущего эксперта.
type Decision struct {
	Approve      bool
	AdminMessage string
	PriceModel   string
	PriceAmount  decimal.Decimal
	Currency     string
}

type ExpertRequestService struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

func New(repo Repository, notifier Notifier, log *slog.Logger) *ExpertRequestService {
	return &ExpertRequestService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Create подаёт заявку на статус эксперта. Пока по пользователю есть
// нерассмотренная заявка, новая не принимается.
func (s *ExpertRequestService) Create(ctx context.Context, userID int64, req models.CreateExpertRequestRequest) (int64, error) {
	const op = "services.expertrequest.Create"

	_, err := s.repo.FindPendingExpertRequest(ctx, userID)
	if err == nil {
		return 0, fmt.Errorf("%s: %w", op, ErrPendingRequestExists)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	record := models.ExpertRequest{
		UserID:      userID,
		Skill:       req.Skill,
		Description: req.Description,
		Status:      "pending",
	}
	if req.Company != "" {
		record.Company = &req.Company
	}
	if req.Position != "" {
		record.Position = &req.Position
	}
	if len(req.ProofURLs) > 0 {
		raw, err := json.Marshal(req.ProofURLs)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		proof := string(raw)
		record.ProofURLs = &proof
	}

	requestID, err := s.repo.CreateExpertRequest(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return requestID, nil
}

// ListMine возвращает заявки пользователя.
func (s *ExpertRequestService) ListMine(ctx context.Context, userID int64) ([]*models.ExpertRequest, error) {
	return s.repo.ListExpertRequestsByUser(ctx, userID)
}

// ListAll возвращает заявки для админки, опционально по статусу.
func (s *ExpertRequestService) ListAll(ctx context.Context, status string, limit, offset int) ([]*models.ExpertRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListExpertRequests(ctx, status, limit, offset)
}

// Decide рассматривает заявку. Одобрение создаёт верифицированный профиль
// эксперта с ценой, заданной администратором; заявитель уведомляется
// в обоих случаях.
func (s *ExpertRequestService) Decide(ctx context.Context, requestID int64, decision Decision) (*models.ExpertRequest, error) {
	const op = "services.expertrequest.Decide"

	status := "rejected"
	if decision.Approve {
		status = "approved"
		if decision.PriceAmount.LessThanOrEqual(decimal.Zero) || !validPriceModel(decision.PriceModel) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidDecision)
		}
	}

	var adminMessage *string
	if decision.AdminMessage != "" {
		adminMessage = &decision.AdminMessage
	}
	req, err := s.repo.DecideExpertRequest(ctx, requestID, status, adminMessage)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrRequestNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if decision.Approve {
		currency := decision.Currency
		if currency == "" {
			currency = "BDT"
		}
		if err := s.repo.UpsertExpertProfile(ctx, models.ExpertProfile{
			ExpertID:    req.UserID,
			PriceModel:  decision.PriceModel,
			PriceAmount: decision.PriceAmount,
			Currency:    currency,
			IsVerified:  true,
		}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.notifier.Notify(ctx, req.UserID, "Expert request approved",
			"Congratulations! Your expert request has been approved.")
	} else {
		s.notifier.Notify(ctx, req.UserID, "Expert request rejected",
			"Unfortunately your expert request has been rejected. "+decision.AdminMessage)
	}

	return req, nil
}

func validPriceModel(model string) bool {
	switch model {
	case models.PlanMonthly, models.PlanPerChat, models.PlanPerQuestion:
		return true
	}
	return false
}
