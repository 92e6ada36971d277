// Package topupinit реализует HTTP-обработчик инициации пополнения кошелька
// через платёжный шлюз bKash.
//
// Handler создаёт запись журнала и платёж в шлюзе, после чего возвращает
// URL страницы оплаты, куда клиент должен перенаправить пользователя.
package topupinit

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

// Handler управляет HTTP-запросами на инициацию пополнения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики пополнения.
type Service interface {
	InitiateTopup(ctx context.Context, userID int64, amount decimal.Decimal) (string, error)
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
// @Summary Начать пополнение кошелька
// @Description Создает платёж в bKash и возвращает URL страницы оплаты.
// @Tags Wallet
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.TopupRequest true "Сумма пополнения"
// @Success 200 {object} map[string]any "URL для перенаправления на оплату"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неположительная сумма"
// @Failure 502 {object} response.ErrorResponse "Платёжный шлюз недоступен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /wallet/topup/init [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallet.topupinit"
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

	redirectURL, err := h.service.InitiateTopup(r.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			log.Error("invalid topup amount", slog.String("amount", req.Amount.String()))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("amount must be positive"))
		case errors.Is(err, wallet.ErrGateway):
			log.Error("payment gateway failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment gateway unavailable"))
		default:
			log.Error("failed to initiate topup", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not initiate topup"))
		}
		return
	}

	log.Info("topup initiated", slog.Int64("user_id", userID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"redirect_url": redirectURL,
	}))
}
