// Package read реализует HTTP-обработчик публичного профиля эксперта.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/services/expert"
)

// Handler обрабатывает запросы публичного профиля эксперта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения профиля эксперта.
type Service interface {
	Get(ctx context.Context, expertID int64) (*expert.PublicProfile, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Публичный профиль эксперта
// @Description Возвращает карточку эксперта вместе с агрегатом оценок.
// @Tags Experts
// @Produce  json
// @Param id path int true "Идентификатор эксперта"
// @Success 200 {object} map[string]any "Профиль эксперта"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Эксперт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /experts/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expert.read"
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

	profile, err := h.service.Get(r.Context(), expertID)
	if err != nil {
		if errors.Is(err, expert.ErrExpertNotFound) {
			log.Error("expert not found", slog.Int64("expert_id", expertID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("expert not found"))
			return
		}
		log.Error("failed to read expert profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read expert profile"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(profile))
}
