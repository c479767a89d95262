package models

import "errors"

// Ошибки предметной области. Слои выше оборачивают их через fmt.Errorf("%s: %w", op, err),
// а HTTP-слой сопоставляет их со статусами через errors.Is.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access denied")
	ErrProtectedAccount   = errors.New("cannot delete the last admin account")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired reset token")
	ErrExpiredToken       = errors.New("reset token has expired")
	ErrDeliveryFailed     = errors.New("failed to deliver email")
	ErrTooManyRequests    = errors.New("too many requests")
)

// Error ошибка с сообщением для клиента и видом из списка выше.
// errors.Is(err, Kind) выполняется через Unwrap.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Unwrap возвращает вид ошибки.
func (e *Error) Unwrap() error { return e.Kind }

// NewError создаёт ошибку вида kind с сообщением msg.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}
