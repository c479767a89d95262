// Package createuser реализует создание учётной записи сотрудника администратором.
//
// Тело принимается как multipart/form-data с необязательным файлом avatar или как JSON.
package createuser

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/form"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Handler обрабатывает создание пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания пользователя.
type Service interface {
	CreateUser(ctx context.Context, req models.DummyUser, avatar *models.Avatar) (*models.User, error)
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
// @Summary Создание пользователя
// @Description Только для администратора. Аватар до 5 МБ, только изображения.
// @Tags Auth
// @Accept  multipart/form-data
// @Produce  json
// @Param f_name formData string true "Имя"
// @Param l_name formData string true "Фамилия"
// @Param email formData string true "Email"
// @Param phone formData string false "Телефон"
// @Param password formData string true "Пароль"
// @Param role_id formData int true "Роль (1-4)"
// @Param avatar formData file false "Аватар"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security CookieAuth
// @Router /auth/create-user [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.createuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUser
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

	user, err := h.service.CreateUser(r.Context(), req, avatar)
	if err != nil {
		if status := response.WriteError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to create user", sl.Err(err))
		} else {
			log.Info("user not created", sl.Err(err))
		}
		return
	}

	log.Info("user created", slog.String("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "User created successfully",
		"user":    user,
	}))
}
