// Package forgotpassword реализует запрос ссылки для сброса пароля.
//
// Повторный запрос для того же email в пределах окна троттлинга отклоняется с 429.
package forgotpassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Request структура входных данных.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс бизнес-логики сброса пароля.
type Service interface {
	RequestPasswordReset(ctx context.Context, email string) (string, error)
}

// Limiter ограничивает частоту запросов сброса для одного email.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

// Handler обрабатывает запрос сброса пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	limiter  Limiter
	window   time.Duration
	validate *validator.Validate
}

// New создает новый экземпляр Handler. window задаёт минимальный интервал между письмами на один email.
func New(log *slog.Logger, service Service, limiter Limiter, window time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		limiter:  limiter,
		window:   window,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Запрос сброса пароля
// @Description Отправляет письмо со ссылкой сброса, действительной один час.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is required"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}
	log = log.With(sl.Email(req.Email))

	allowed, err := h.limiter.Allow(r.Context(), "reset:"+req.Email, h.window)
	if err != nil {
		log.Warn("throttle unavailable, request allowed", sl.Err(err))
		allowed = true
	}
	if !allowed {
		log.Info("reset request throttled")
		response.WriteError(w, r, models.NewError(models.ErrTooManyRequests,
			"a reset email was sent recently, please try again later"))
		return
	}

	if _, err = h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if status := response.WriteError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to request password reset", sl.Err(err))
		} else {
			log.Info("password reset rejected", sl.Err(err))
		}
		return
	}

	log.Info("password reset email sent")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Password reset email sent successfully",
	}))
}
