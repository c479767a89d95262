// Package check отвечает, действительна ли сессия, и возвращает текущего пользователя.
package check

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
)

// Handler обрабатывает проверку сессии. Ставится за JWTMiddleware.
type Handler struct{}

// New создает новый экземпляр Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Проверка сессии
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/check [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"isAuthenticated": true,
		"user":            user.SessionView(),
	}))
}
