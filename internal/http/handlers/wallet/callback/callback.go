// Package callback реализует HTTP-обработчик возврата плательщика из bKash.
//
// Шлюз перенаправляет браузер плательщика на этот адрес с paymentID
// и статусом. Обработчик подтверждает и зачисляет платёж, после чего
// перенаправляет браузер на страницу успеха или неудачи фронтенда.
// Ошибки здесь никогда не отдаются как 500 — всегда redirect на fail-страницу.
package callback

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/meetexpert/meetexpert/internal/lib/sl"
)

// Handler управляет callback-запросами платёжного шлюза.
type Handler struct {
	log        *slog.Logger
	service    Service
	successURL string
	failURL    string
}

// Service описывает интерфейс бизнес-логики обработки callback.
type Service interface {
	HandleCallback(ctx context.Context, paymentID, statusFlag string) error
}

// New создает новый Handler с переданными логгером, сервисом и адресами редиректа.
func New(log *slog.Logger, service Service, successURL, failURL string) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		successURL: successURL,
		failURL:    failURL,
	}
}

// ServeHTTP godoc
// @Summary Callback платёжного шлюза bKash
// @Description Принимает возврат плательщика, подтверждает платёж и перенаправляет на страницу итога.
// @Tags Wallet
// @Param paymentID query string true "Идентификатор платежа в шлюзе"
// @Param status query string true "Статус оплаты (success, failure, cancel)"
// @Success 302 "Redirect на страницу успеха или неудачи"
// @Router /wallet/bkash/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallet.callback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	paymentID := r.URL.Query().Get("paymentID")
	statusFlag := r.URL.Query().Get("status")

	if err := h.service.HandleCallback(r.Context(), paymentID, statusFlag); err != nil {
		log.Error("topup callback failed",
			slog.String("payment_id", paymentID),
			slog.String("status", statusFlag),
			sl.Err(err))
		http.Redirect(w, r, h.failURL, http.StatusFound)
		return
	}

	log.Info("topup callback processed", slog.String("payment_id", paymentID))
	http.Redirect(w, r, h.successURL, http.StatusFound)
}
