// Package deleteuser реализует удаление учётной записи.
//
// Администратор удаляет любую запись, кроме последнего администратора; остальные
// пользователи удаляют только себя, подтверждая пароль в теле запроса.
package deleteuser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Request необязательное тело запроса.
type Request struct {
	Password string `json:"password"`
}

// Service описывает интерфейс бизнес-логики удаления.
type Service interface {
	DeleteUser(ctx context.Context, requester *models.User, targetID, password string) error
}

// Handler обрабатывает удаление пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удаление пользователя
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param request body Request false "Пароль (для удаления своей записи)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security CookieAuth
// @Router /auth/delete-user/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.deleteuser"

	targetID := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("target_id", targetID),
	)

	requester, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.DeleteUser(r.Context(), requester, targetID, req.Password); err != nil {
		if status := response.WriteError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to delete user", sl.Err(err))
		} else {
			log.Info("user not deleted", sl.Err(err))
		}
		return
	}

	log.Info("user deleted", slog.String("requester_id", requester.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "User deleted successfully",
	}))
}
