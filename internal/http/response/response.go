// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Status: статус запроса ("OK" или "Error").
// Error: текст ошибки (опционально, при неуспехе).
// Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// InternalErrorMessage текст, который клиент получает вместо внутренних ошибок.
const InternalErrorMessage = "internal server error"

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{models.ErrUnauthenticated, http.StatusUnauthorized},
	{models.ErrInvalidCredentials, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrProtectedAccount, http.StatusForbidden},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrValidation, http.StatusBadRequest},
	{models.ErrUserExists, http.StatusBadRequest},
	{models.ErrInvalidToken, http.StatusBadRequest},
	{models.ErrExpiredToken, http.StatusBadRequest},
	{models.ErrTooManyRequests, http.StatusTooManyRequests},
	{models.ErrDeliveryFailed, http.StatusInternalServerError},
}

// FromError сопоставляет ошибку со статусом HTTP и сообщением для клиента.
// Для models.Error берётся его сообщение, для прочих известных ошибок текст
// самого вида. Неизвестные ошибки дают 500 с общим текстом.
func FromError(err error) (int, string) {
	for _, k := range statusByKind {
		if !errors.Is(err, k.kind) {
			continue
		}
		var e *models.Error
		if errors.As(err, &e) && errors.Is(e.Kind, k.kind) {
			return k.status, e.Msg
		}
		return k.status, k.kind.Error()
	}
	return http.StatusInternalServerError, InternalErrorMessage
}

// WriteError отвечает статусом и сообщением из FromError и возвращает статус.
func WriteError(w http.ResponseWriter, r *http.Request, err error) int {
	status, msg := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
	return status
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "datetime":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a date in format YYYY-MM-DD", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
