// Package devtopup реализует HTTP-обработчик мгновенного пополнения кошелька
// в обход платёжного шлюза. Маршрут регистрируется только при включённом
// флаге конфига enable_dev_topup.
package devtopup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/wallet"
)

// Handler управляет HTTP-запросами на dev-пополнение.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики dev-пополнения.
type Service interface {
	DevTopup(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
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
// @Summary Мгновенное пополнение кошелька (dev)
// @Description Зачисляет средства сразу, минуя платёжный шлюз. Доступно только при включённом флаге конфига.
// @Tags Wallet
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.TopupRequest true "Сумма пополнения"
// @Success 200 {object} map[string]any "Идентификатор операции"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неположительная сумма"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /wallet/topup/dev [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallet.devtopup"
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

	var req models.TopupRequest
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

	txID, err := h.service.DevTopup(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidAmount) {
			log.Error("invalid topup amount", slog.String("amount", req.Amount.String()))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("amount must be positive"))
			return
		}
		log.Error("failed to credit dev topup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not credit topup"))
		return
	}

	log.Info("dev topup credited", slog.Int64("user_id", userID), slog.Int64("tx_id", txID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tx_id": txID,
	}))
}
