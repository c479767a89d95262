package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// RequireRole пропускает запрос, только если роль пользователя из контекста входит в roles.
// Ставится после JWTMiddleware; без пользователя в контексте отвечает 403.
func RequireRole(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRole"

			user, ok := UserFromContext(r.Context())
			if !ok || !slices.Contains(roles, user.RoleID) {
				attrs := []any{
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				}
				if ok {
					attrs = append(attrs, slog.String("user_id", user.ID), slog.String("role", user.RoleID.String()))
				}
				log.Warn("access denied", attrs...)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
