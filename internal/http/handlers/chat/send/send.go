// Package send реализует HTTP-обработчик отправки сообщения в чат.
package send

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

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/chat"
)

// Handler управляет HTTP-запросами на отправку сообщений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики отправки сообщений.
type Service interface {
	Send(ctx context.Context, userID, chatID int64, req models.SendMessageRequest) (*models.Message, error)
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
// @Summary Отправить сообщение
// @Description Сохраняет сообщение в чате активной подписки и уведомляет собеседника.
// @Tags Chats
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор чата"
// @Param request body models.SendMessageRequest true "Текст сообщения"
// @Success 200 {object} map[string]any "Сообщение"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет доступа к чату"
// @Failure 404 {object} response.ErrorResponse "Чат не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /chats/{id}/messages [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"
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

	chatID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || chatID <= 0 {
		log.Error("failed to decode chat id from url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid chat id"))
		return
	}

	var req models.SendMessageRequest
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

	msg, err := h.service.Send(r.Context(), userID, chatID, req)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrChatNotFound):
			log.Error("chat not found", slog.Int64("chat_id", chatID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("chat not found"))
		case errors.Is(err, chat.ErrNotParticipant):
			log.Error("user is not a chat participant", slog.Int64("chat_id", chatID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access to this chat is denied"))
		case errors.Is(err, chat.ErrNotSubscribed):
			log.Error("subscription expired for chat", slog.Int64("chat_id", chatID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("active subscription required"))
		default:
			log.Error("failed to send message", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not send message"))
		}
		return
	}

	log.Info("message sent", slog.Int64("message_id", msg.MessageID))
	render.JSON(w, r, response.StatusOKWithData(msg))
}
