// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"log/slog"
	"strings"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Email возвращает атрибут "email" с замаскированной локальной частью адреса:
// "john.doe@example.com" -> "j***@example.com".
func Email(addr string) slog.Attr {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return slog.String("email", "***")
	}
	return slog.String("email", addr[:1]+"***"+addr[at:])
}
