package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
)

// UserProvider отдает пользователя по идентификатору.
type UserProvider interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// CheckUserStatusMiddleware не пропускает заблокированные и удалённые
// учётные записи. Должен стоять после JWTMiddleware.
func CheckUserStatusMiddleware(log *slog.Logger, provider UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "auth.CheckUserStatusMiddleware"

			log = log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			uid, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Error("missing user id in context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			user, err := provider.GetUser(r.Context(), uid)
			if err != nil {
				log.Error("failed to load user", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if user.Status != models.UserStatusActive {
				log.Error("account is not active", slog.String("status", user.Status))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("account is blocked or deleted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
