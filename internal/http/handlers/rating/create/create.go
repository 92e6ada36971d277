// Package create реализует HTTP-обработчик выставления оценки эксперту.
//
// Оценивать может только искатель, когда-либо покупавший подписку
// на эксперта; повторная оценка обновляет существующую.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/rating"
)

// Handler управляет HTTP-запросами на выставление оценки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики оценивания.
type Service interface {
	Rate(ctx context.Context, seekerID, expertID int64, value int, review *string) (int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оценить эксперта
// @Description Сохраняет оценку 1..5 с необязательным отзывом и пересчитывает среднюю оценку эксперта.
// @Tags Ratings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CreateRatingRequest true "Оценка и отзыв"
// @Success 200 {object} map[string]any "Идентификатор оценки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет подписки на эксперта"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /ratings [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rating.create"
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

	var req models.CreateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	var review *string
	if req.Review != "" {
		review = &req.Review
	}
	ratingID, err := h.service.Rate(r.Context(), seekerID, req.ExpertID, req.RatingValue, review)
	if err != nil {
		if errors.Is(err, rating.ErrNotSubscribed) {
			log.Error("seeker has never subscribed", slog.Int64("expert_id", req.ExpertID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("subscription required to rate this expert"))
			return
		}
		log.Error("failed to save rating", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save rating"))
		return
	}

	log.Info("rating saved", slog.Int64("rating_id", ratingID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rating_id": ratingID,
	}))
}
