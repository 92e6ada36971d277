// Package subscription реализует покупку подписки на эксперта из кошелька
// и чтение подписок искателя.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/metrics"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// Доменные ошибки сервиса подписок.
var (
	ErrExpertNotPurchasable  = errors.New("expert is not purchasable")
	ErrDuplicateSubscription = errors.New("active subscription already exists")
	ErrInsufficientBalance   = errors.New("insufficient wallet balance")
)

// Срок месячной подписки. Планы per_chat и per_question бессрочные.
const monthlyDuration = 30 * 24 * time.Hour

type Repository interface {
	GetExpertProfile(ctx context.Context, expertID int64) (*models.ExpertProfile, error)
	HasLiveSubscription(ctx context.Context, seekerID, expertID int64) (bool, error)
	PurchaseSubscription(ctx context.Context, seekerID, expertID int64,
		price decimal.Decimal, plan string, endAt *time.Time) (*models.PurchaseResult, error)
	ListSubscriptionsBySeeker(ctx context.Context, seekerID int64, limit, offset int) ([]*models.Subscription, error)
}

// Notifier рассылает уведомления после покупки, best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, body string)
}

type SubscriptionService struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

func New(repo Repository, notifier Notifier, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Purchase покупает подписку на эксперта из кошелька искателя.
//
// Предусловия в порядке проверки: профиль эксперта существует и цена
// положительна; нет действующей подписки; средств хватает. Списание,
// запись журнала, подписка, платёж и чат создаются одной транзакцией.
func (s *SubscriptionService) Purchase(ctx context.Context, seekerID, expertID int64) (*models.PurchaseResult, error) {
	const op = "services.subscription.Purchase"

	profile, err := s.repo.GetExpertProfile(ctx, expertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.PurchasesRejected.WithLabelValues("not_purchasable").Inc()
			return nil, fmt.Errorf("%s: %w", op, ErrExpertNotPurchasable)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile.PriceAmount.LessThanOrEqual(decimal.Zero) {
		metrics.PurchasesRejected.WithLabelValues("not_purchasable").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrExpertNotPurchasable)
	}

	exists, err := s.repo.HasLiveSubscription(ctx, seekerID, expertID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		metrics.PurchasesRejected.WithLabelValues("duplicate").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrDuplicateSubscription)
	}

	result, err := s.repo.PurchaseSubscription(ctx, seekerID, expertID,
		profile.PriceAmount, profile.PriceModel, endAtFor(profile.PriceModel))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			metrics.PurchasesRejected.WithLabelValues("insufficient_balance").Inc()
			return nil, fmt.Errorf("%s: %w", op, ErrInsufficientBalance)
		case errors.Is(err, repository.ErrDuplicateSubscription):
			metrics.PurchasesRejected.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateSubscription)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SubscriptionsPurchased.Inc()

	s.notifier.Notify(ctx, expertID, "New subscriber",
		"You have a new subscriber. Open your chats to start the conversation.")
	s.notifier.Notify(ctx, seekerID, "Subscription activated",
		"Your subscription is active. The chat with the expert is ready.")

	return result, nil
}

// Status сообщает, может ли искатель оформить подписку на эксперта.
func (s *SubscriptionService) Status(ctx context.Context, seekerID, expertID int64) (bool, error) {
	const op = "services.subscription.Status"

	exists, err := s.repo.HasLiveSubscription(ctx, seekerID, expertID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return !exists, nil
}

// List возвращает подписки искателя.
func (s *SubscriptionService) List(ctx context.Context, seekerID int64, limit, offset int) ([]*models.Subscription, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListSubscriptionsBySeeker(ctx, seekerID, limit, offset)
}

// endAtFor возвращает срок окончания подписки: 30 дней для monthly,
// nil для остальных планов.
func endAtFor(plan string) *time.Time {
	if plan != models.PlanMonthly {
		return nil
	}
	endAt := time.Now().Add(monthlyDuration)
	return &endAt
}
