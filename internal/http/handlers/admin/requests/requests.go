// Package requests реализует HTTP-обработчик списка заявок экспертов для администратора.
package requests

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
)

// Handler обрабатывает запросы списка заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения заявок.
type Service interface {
	ListAll(ctx context.Context, status string, limit, offset int) ([]*models.ExpertRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Заявки на статус эксперта
// @Description Возвращает заявки с фильтром по статусу, новые первыми.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param status query string false "pending, approved или rejected"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Заявки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/expert-requests [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.requests"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, err := h.service.ListAll(r.Context(), q.Get("status"), limit, offset)
	if err != nil {
		log.Error("failed to list expert requests", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list expert requests"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"requests": items,
	}))
}
