// Package meetexpert предоставляет маршруты для основного приложения.
package meetexpert

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/meetexpert/meetexpert/internal/config"
	admindecision "github.com/meetexpert/meetexpert/internal/http/handlers/admin/decision"
	adminrequests "github.com/meetexpert/meetexpert/internal/http/handlers/admin/requests"
	adminsetstatus "github.com/meetexpert/meetexpert/internal/http/handlers/admin/setstatus"
	adminsummary "github.com/meetexpert/meetexpert/internal/http/handlers/admin/summary"
	admintransactions "github.com/meetexpert/meetexpert/internal/http/handlers/admin/transactions"
	adminusers "github.com/meetexpert/meetexpert/internal/http/handlers/admin/users"
	"github.com/meetexpert/meetexpert/internal/http/handlers/auth/login"
	"github.com/meetexpert/meetexpert/internal/http/handlers/auth/register"
	chathistory "github.com/meetexpert/meetexpert/internal/http/handlers/chat/history"
	chatlist "github.com/meetexpert/meetexpert/internal/http/handlers/chat/list"
	chatopen "github.com/meetexpert/meetexpert/internal/http/handlers/chat/open"
	chatsend "github.com/meetexpert/meetexpert/internal/http/handlers/chat/send"
	expertlist "github.com/meetexpert/meetexpert/internal/http/handlers/expert/list"
	expertread "github.com/meetexpert/meetexpert/internal/http/handlers/expert/read"
	requestcreate "github.com/meetexpert/meetexpert/internal/http/handlers/expertrequest/create"
	requestmine "github.com/meetexpert/meetexpert/internal/http/handlers/expertrequest/mine"
	"github.com/meetexpert/meetexpert/internal/http/handlers/health"
	"github.com/meetexpert/meetexpert/internal/http/handlers/me"
	notificationlist "github.com/meetexpert/meetexpert/internal/http/handlers/notification/list"
	notificationmarkread "github.com/meetexpert/meetexpert/internal/http/handlers/notification/markread"
	notificationreadall "github.com/meetexpert/meetexpert/internal/http/handlers/notification/readall"
	postcreate "github.com/meetexpert/meetexpert/internal/http/handlers/post/create"
	postlist "github.com/meetexpert/meetexpert/internal/http/handlers/post/list"
	ratingcreate "github.com/meetexpert/meetexpert/internal/http/handlers/rating/create"
	ratinglist "github.com/meetexpert/meetexpert/internal/http/handlers/rating/list"
	subscriptionlist "github.com/meetexpert/meetexpert/internal/http/handlers/subscription/list"
	"github.com/meetexpert/meetexpert/internal/http/handlers/subscription/purchase"
	subscriptionstatus "github.com/meetexpert/meetexpert/internal/http/handlers/subscription/status"
	userread "github.com/meetexpert/meetexpert/internal/http/handlers/user/read"
	"github.com/meetexpert/meetexpert/internal/http/handlers/wallet/balance"
	"github.com/meetexpert/meetexpert/internal/http/handlers/wallet/callback"
	"github.com/meetexpert/meetexpert/internal/http/handlers/wallet/devtopup"
	"github.com/meetexpert/meetexpert/internal/http/handlers/wallet/topupinit"
	"github.com/meetexpert/meetexpert/internal/http/handlers/wallet/txlist"
	"github.com/meetexpert/meetexpert/internal/http/middlewarectx"
	"github.com/meetexpert/meetexpert/internal/lib/jwt"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, maker jwt.Maker, db *repository.Storage, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/experts", expertlist.New(logger, s.Expert).ServeHTTP)
		r.Get("/experts/{id}", expertread.New(logger, s.Expert).ServeHTTP)
		r.Get("/experts/{id}/ratings", ratinglist.New(logger, s.Rating).ServeHTTP)
		r.Get("/posts", postlist.New(logger, s.Post).ServeHTTP)
		r.Get("/users/{id}", userread.New(logger, s.Auth).ServeHTTP)

		// Обратный вызов платёжного шлюза (без аутентификации)
		r.Get("/wallet/bkash/callback", callback.New(logger, s.Wallet, cfg.Bkash.SuccessRedirectURL, cfg.Bkash.FailRedirectURL).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.CheckUserStatusMiddleware(logger, db))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/me", me.New(logger, s.Auth).ServeHTTP)

			r.Get("/wallet/balance", balance.New(logger, s.Wallet).ServeHTTP)
			r.Post("/wallet/topup/init", topupinit.New(logger, s.Wallet).ServeHTTP)
			r.Get("/wallet/transactions", txlist.New(logger, s.Wallet).ServeHTTP)
			if cfg.EnableDevTopup {
				r.Post("/wallet/dev-topup", devtopup.New(logger, s.Wallet).ServeHTTP)
			}

			r.Post("/subscriptions/{expertID}", purchase.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscriptions/{expertID}/status", subscriptionstatus.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscriptions", subscriptionlist.New(logger, s.Subscription).ServeHTTP)

			r.Post("/ratings", ratingcreate.New(logger, s.Rating).ServeHTTP)
			r.Post("/posts", postcreate.New(logger, s.Post).ServeHTTP)

			r.Get("/chats", chatlist.New(logger, s.Chat).ServeHTTP)
			r.Post("/chats", chatopen.New(logger, s.Chat).ServeHTTP)
			r.Get("/chats/{id}/messages", chathistory.New(logger, s.Chat).ServeHTTP)
			r.Post("/chats/{id}/messages", chatsend.New(logger, s.Chat).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, s.Notification).ServeHTTP)
			r.Patch("/notifications/read-all", notificationreadall.New(logger, s.Notification).ServeHTTP)
			r.Patch("/notifications/{id}/read", notificationmarkread.New(logger, s.Notification).ServeHTTP)

			r.Post("/expert-requests", requestcreate.New(logger, s.ExpertRequest).ServeHTTP)
			r.Get("/expert-requests/my", requestmine.New(logger, s.ExpertRequest).ServeHTTP)

			// Администрирование
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Get("/summary", adminsummary.New(logger, s.Admin).ServeHTTP)
				r.Get("/users", adminusers.New(logger, s.Admin).ServeHTTP)
				r.Patch("/users/{id}/block", adminsetstatus.NewBlock(logger, s.Admin).ServeHTTP)
				r.Patch("/users/{id}/restore", adminsetstatus.NewRestore(logger, s.Admin).ServeHTTP)
				r.Delete("/users/{id}", adminsetstatus.NewRemove(logger, s.Admin).ServeHTTP)
				r.Get("/transactions", admintransactions.New(logger, s.Admin).ServeHTTP)
				r.Get("/expert-requests", adminrequests.New(logger, s.ExpertRequest).ServeHTTP)
				r.Post("/expert-requests/{id}/decision", admindecision.New(logger, s.ExpertRequest).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, func() error {
		return repository.CheckDatabaseReady(db)
	}).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
