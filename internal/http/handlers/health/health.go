// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
)

// Checker проверяет готовность зависимости сервиса.
type Checker func() error

// Handler обрабатывает запросы проверки готовности.
type Handler struct {
	log   *slog.Logger
	check Checker
}

// New создает новый Handler с переданной проверкой готовности.
func New(log *slog.Logger, check Checker) *Handler {
	return &Handler{
		log:   log,
		check: check,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if h.check != nil {
		if err := h.check(); err != nil {
			h.log.Error("health check failed", slog.String("op", op), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("service is not ready"))
			return
		}
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
