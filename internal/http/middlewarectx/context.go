package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserKey ключ текущего пользователя в контексте.
const UserKey Key = "user"

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromContext достаёт пользователя, положенного JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}
