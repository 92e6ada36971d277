// Package open реализует HTTP-обработчик открытия чата с экспертом.
//
// Чат создается лениво: первое открытие по активной подписке создает
// запись, повторные возвращают существующий чат.
package open

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
	"github.com/meetexpert/meetexpert/internal/services/chat"
)

// Handler управляет HTTP-запросами на открытие чата.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики открытия чата.
type Service interface {
	Open(ctx context.Context, seekerID, expertID int64) (*models.Chat, error)
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
// @Summary Открыть чат с экспертом
// @Description Создает или возвращает чат по активной подписке на эксперта.
// @Tags Chats
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.OpenChatRequest true "Идентификатор эксперта"
// @Success 200 {object} map[string]any "Чат"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /chats [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.open"
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

	var req models.OpenChatRequest
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

	result, err := h.service.Open(r.Context(), seekerID, req.ExpertID)
	if err != nil {
		if errors.Is(err, chat.ErrNotSubscribed) {
			log.Error("no live subscription for chat", slog.Int64("expert_id", req.ExpertID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("active subscription required"))
			return
		}
		log.Error("failed to open chat", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not open chat"))
		return
	}

	log.Info("chat opened", slog.Int64("chat_id", result.ChatID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
