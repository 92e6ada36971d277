// Package purchase реализует HTTP-обработчик покупки подписки на эксперта.
//
// Handler списывает стоимость подписки из кошелька искателя; при нехватке
// средств возвращает 402 Payment Required — клиент перенаправляет
// пользователя на пополнение кошелька.
package purchase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/subscription"
)

// Handler управляет HTTP-запросами на покупку подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики покупки подписки.
type Service interface {
	Purchase(ctx context.Context, seekerID, expertID int64) (*models.PurchaseResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Купить подписку на эксперта
// @Description Списывает стоимость подписки из кошелька и открывает чат с экспертом.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param expertID path int true "Идентификатор эксперта"
// @Success 200 {object} map[string]any "Подписка, чат и операция списания"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор эксперта"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Недостаточно средств на кошельке"
// @Failure 409 {object} response.ErrorResponse "Эксперт недоступен или подписка уже есть"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{expertID} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.purchase"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	seekerID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	expertID, err := strconv.ParseInt(chi.URLParam(r, "expertID"), 10, 64)
	if err != nil || expertID <= 0 {
		log.Error("failed to decode expert id from url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid expert id"))
		return
	}

	result, err := h.service.Purchase(r.Context(), seekerID, expertID)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrExpertNotPurchasable):
			log.Error("expert is not purchasable", slog.Int64("expert_id", expertID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("expert is not available for subscription"))
		case errors.Is(err, subscription.ErrDuplicateSubscription):
			log.Error("duplicate subscription", slog.Int64("expert_id", expertID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("active subscription already exists"))
		case errors.Is(err, subscription.ErrInsufficientBalance):
			log.Error("insufficient balance", slog.Int64("seeker_id", seekerID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("insufficient wallet balance"))
		default:
			log.Error("failed to purchase subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not purchase subscription"))
		}
		return
	}

	log.Info("subscription purchased",
		slog.Int64("seeker_id", seekerID),
		slog.Int64("subscription_id", result.Subscription.SubscriptionID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
