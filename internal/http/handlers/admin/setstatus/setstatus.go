// Package setstatus реализует HTTP-обработчики модерации пользователей:
// блокировку, мягкое удаление и восстановление учётной записи.
package setstatus

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
	"github.com/meetexpert/meetexpert/internal/services/admin"
)

// Handler управляет HTTP-запросами смены статуса пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
	action  string
	apply   func(ctx context.Context, userID int64) error
}

// Service описывает интерфейс бизнес-логики модерации пользователей.
type Service interface {
	BlockUser(ctx context.Context, userID int64) error
	RemoveUser(ctx context.Context, userID int64) error
	RestoreUser(ctx context.Context, userID int64) error
}

// NewBlock создает Handler, блокирующий пользователя.
//
// NewBlock godoc
// @Summary Заблокировать пользователя
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Пользователь заблокирован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{id}/block [patch]
func NewBlock(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, action: "block", apply: service.BlockUser}
}

// NewRemove создает Handler, помечающий пользователя удалённым.
//
// NewRemove godoc
// @Summary Удалить пользователя
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Пользователь удалён"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{id} [delete]
func NewRemove(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, action: "remove", apply: service.RemoveUser}
}

// NewRestore создает Handler, восстанавливающий учётную запись.
//
// NewRestore godoc
// @Summary Восстановить пользователя
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Пользователь восстановлен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{id}/restore [patch]
func NewRestore(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, action: "restore", apply: service.RestoreUser}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setstatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("action", h.action),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		log.Error("failed to decode user id from url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	if err := h.apply(r.Context(), userID); err != nil {
		if errors.Is(err, admin.ErrUserNotFound) {
			log.Error("user not found", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to change user status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not change user status"))
		return
	}

	log.Info("user status changed", slog.Int64("user_id", userID))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
