// Package byrole реализует получение сотрудников с заданной ролью.
package byrole

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Handler обрабатывает запросы списка пользователей по роли.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пользователи по роли
// @Tags Users
// @Produce  json
// @Param role path string true "Роль: admin, manager, pharmacist, salesman или 1-4"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security CookieAuth
// @Router /users/{role} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.byrole"

	role := chi.URLParam(r, "role")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("role", role),
	)

	users, err := h.service.ListByRole(r.Context(), role)
	if err != nil {
		if status := response.WriteError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to list users by role", sl.Err(err))
		} else {
			log.Info("bad role", sl.Err(err))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users": users,
	}))
}
