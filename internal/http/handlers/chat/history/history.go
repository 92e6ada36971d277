// Package history реализует HTTP-обработчик истории сообщений чата.
package history

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
	"github.com/meetexpert/meetexpert/internal/services/chat"
)

// Handler обрабатывает запросы истории сообщений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения сообщений.
type Service interface {
	History(ctx context.Context, userID, chatID int64, limit, offset int) ([]*models.Message, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История сообщений
// @Description Возвращает сообщения чата в хронологическом порядке.
// @Tags Chats
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор чата"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Сообщения"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет доступа к чату"
// @Failure 404 {object} response.ErrorResponse "Чат не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /chats/{id}/messages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.history"
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

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.service.History(r.Context(), userID, chatID, limit, offset)
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
			log.Error("failed to read chat history", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read chat history"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"messages": items,
	}))
}
