// Package list реализует HTTP-обработчик публичного списка оценок эксперта.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
)

// Handler обрабатывает запросы списка оценок эксперта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения оценок.
type Service interface {
	ListForExpert(ctx context.Context, expertID int64) ([]*models.RatingWithSeeker, *models.RatingSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Оценки эксперта
// @Description Возвращает оценки эксперта с данными авторов и агрегатом.
// @Tags Ratings
// @Produce  json
// @Param id path int true "Идентификатор эксперта"
// @Success 200 {object} map[string]any "Оценки и агрегат"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /experts/{id}/ratings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rating.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	expertID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || expertID <= 0 {
		log.Error("failed to decode expert id from url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid expert id"))
		return
	}

	items, summary, err := h.service.ListForExpert(r.Context(), expertID)
	if err != nil {
		log.Error("failed to list ratings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list ratings"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"ratings": items,
		"summary": summary,
	}))
}
