// Package status реализует HTTP-обработчик проверки возможности подписки.
// Используется клиентом для отображения кнопки подписки.
package status

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
)

// Handler обрабатывает запросы на проверку возможности подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики проверки подписки.
type Service interface {
	Status(ctx context.Context, seekerID, expertID int64) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить возможность подписки
// @Description Сообщает, может ли текущий пользователь оформить подписку на эксперта.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param expertID path int true "Идентификатор эксперта"
// @Success 200 {object} map[string]any "Флаг can_subscribe"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор эксперта"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/status/{expertID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"
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

	canSubscribe, err := h.service.Status(r.Context(), seekerID, expertID)
	if err != nil {
		log.Error("failed to check subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check subscription status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"can_subscribe": canSubscribe,
	}))
}
