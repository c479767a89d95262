// Package smtp предоставляет SMTP-транспорт для отправки писем сброса пароля.
package smtp

import (
	"context"
	"io"
)

// Client подмножество *smtp.Client, нужное для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает аутентифицированную SMTP-сессию.
// FromAddress адрес учётной записи, от имени которой уходят письма.
type Dialer interface {
	Connect(ctx context.Context) (Client, error)
	FromAddress() string
}
