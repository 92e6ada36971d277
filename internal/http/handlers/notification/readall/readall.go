// Package readall реализует HTTP-обработчик отметки всех уведомлений прочитанными.
package readall

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
)

// Handler обрабатывает запросы массовой отметки уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики массовой отметки.
type Service interface {
	MarkAllRead(ctx context.Context, userID int64) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить все уведомления прочитанными
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Количество отмеченных уведомлений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications/read-all [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.readall"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	marked, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		log.Error("failed to mark all notifications read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark notifications read"))
		return
	}

	log.Info("notifications marked read", slog.Int("count", marked))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"marked": marked,
	}))
}
