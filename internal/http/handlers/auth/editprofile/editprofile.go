// Package editprofile реализует редактирование собственного профиля.
package editprofile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/form"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Handler обрабатывает изменение профиля текущего пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики профиля.
type Service interface {
	EditProfile(ctx context.Context, requester *models.User, req models.DummyProfile, avatar *models.Avatar) (*models.User, error)
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
// @Summary Редактирование профиля
// @Description Смена пароля требует oldPassword.
// @Tags Auth
// @Accept  multipart/form-data
// @Produce  json
// @Param f_name formData string false "Имя"
// @Param l_name formData string false "Фамилия"
// @Param email formData string false "Email"
// @Param phone formData string false "Телефон"
// @Param oldPassword formData string false "Текущий пароль"
// @Param password formData string false "Новый пароль"
// @Param avatar formData file false "Аватар"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security CookieAuth
// @Router /auth/edit-profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.editprofile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requester, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}
	log = log.With(slog.String("user_id", requester.ID))

	var req models.DummyProfile
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

	user, err := h.service.EditProfile(r.Context(), requester, req, avatar)
	if err != nil {
		if status := response.WriteError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to edit profile", sl.Err(err))
		} else {
			log.Info("profile not updated", sl.Err(err))
		}
		return
	}

	log.Info("profile updated")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Profile updated successfully",
		"user":    user,
	}))
}
