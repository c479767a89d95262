// Package updateuser реализует изменение данных сотрудника администратором.
package updateuser

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/form"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Handler обрабатывает изменение пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики изменения пользователя.
type Service interface {
	UpdateUser(ctx context.Context, id string, req models.DummyUserUpdate, avatar *models.Avatar) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменение пользователя
// @Description Только для администратора. Пустые поля не изменяются.
// @Tags Auth
// @Accept  multipart/form-data
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param f_name formData string false "Имя"
// @Param l_name formData string false "Фамилия"
// @Param phone formData string false "Телефон"
// @Param role_id formData int false "Роль (1-4)"
// @Param avatar formData file false "Аватар"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security CookieAuth
// @Router /auth/update-user/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.updateuser"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", id),
	)

	var req models.DummyUserUpdate
	avatar, err := form.Decode(w, r, &req)
	if err != nil {
		log.Info("failed to decode request", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	if err = h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req, avatar)
	if err != nil {
		if status := response.WriteError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to update user", sl.Err(err))
		} else {
			log.Info("user not updated", sl.Err(err))
		}
		return
	}

	log.Info("user updated")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "User updated successfully",
		"user":    user,
	}))
}
