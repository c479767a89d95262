// Package logout реализует выход: очищает cookie сессии.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/cookie"
)

// Handler обрабатывает выход из системы.
type Handler struct {
	log          *slog.Logger
	secureCookie bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, secureCookie bool) *Handler {
	return &Handler{
		log:          log,
		secureCookie: secureCookie,
	}
}

// ServeHTTP godoc
// @Summary Выход из системы
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookie.Clear(w, h.secureCookie)
	h.log.Debug("session cookie cleared",
		slog.String("op", "handlers.auth.logout"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Logged out successfully",
	}))
}
