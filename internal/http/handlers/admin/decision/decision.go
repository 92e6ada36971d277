// Package decision реализует HTTP-обработчик решения администратора по заявке эксперта.
//
// Одобрение создает или обновляет верифицированный профиль эксперта
// с тарифом, заданным в решении; отклонение фиксирует комментарий.
package decision

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/expertrequest"
)

// Handler управляет HTTP-запросами решений по заявкам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики решений по заявкам.
type Service interface {
	Decide(ctx context.Context, requestID int64, decision expertrequest.Decision) (*models.ExpertRequest, error)
}

// decideRequest используется для приёма решения администратора из JSON-запроса.
type decideRequest struct {
	Approve      bool   `json:"approve"`
	AdminMessage string `json:"admin_message"`
	PriceModel   string `json:"price_model"`
	PriceAmount  string `json:"price_amount"`
	Currency     string `json:"currency"`
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
// @Summary Решение по заявке эксперта
// @Description Одобряет заявку с назначением тарифа либо отклоняет её с комментарием.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор заявки"
// @Param request body decideRequest true "Решение и тариф"
// @Success 200 {object} map[string]any "Обновлённая заявка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена или уже рассмотрена"
// @Failure 422 {object} response.ErrorResponse "Некорректное решение"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/expert-requests/{id}/decision [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.decision"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || requestID <= 0 {
		log.Error("failed to decode request id from url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request id"))
		return
	}

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	decision := expertrequest.Decision{
		Approve:      req.Approve,
		AdminMessage: req.AdminMessage,
		PriceModel:   req.PriceModel,
		Currency:     req.Currency,
	}
	if req.PriceAmount != "" {
		amount, err := decimal.NewFromString(req.PriceAmount)
		if err != nil {
			log.Error("failed to parse price amount", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid price amount"))
			return
		}
		decision.PriceAmount = amount
	}

	result, err := h.service.Decide(r.Context(), requestID, decision)
	if err != nil {
		switch {
		case errors.Is(err, expertrequest.ErrRequestNotFound):
			log.Error("expert request not found", slog.Int64("request_id", requestID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("expert request not found or already decided"))
		case errors.Is(err, expertrequest.ErrInvalidDecision):
			log.Error("invalid decision payload", slog.Int64("request_id", requestID))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("approval requires a valid price model and positive amount"))
		default:
			log.Error("failed to decide expert request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not decide expert request"))
		}
		return
	}

	log.Info("expert request decided",
		slog.Int64("request_id", requestID),
		slog.Bool("approved", req.Approve),
	)
	render.JSON(w, r, response.StatusOKWithData(result))
}
