// Package jwt реализует выпуск и проверку сессионных JWT токенов.
//
// Токен подписывается HS256, содержит идентификатор пользователя и его роль
// и живёт фиксированное время (по умолчанию 24 часа). Сервер токены не хранит.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// SessionTTL время жизни сессионного токена по умолчанию.
const SessionTTL = 24 * time.Hour

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateToken(userID string, role models.Role) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string           // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration    // Время жизни токена.
	now       func() time.Time // Источник текущего времени.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
// Нулевой TTL заменяется на SessionTTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	if ttl == 0 {
		ttl = SessionTTL
	}
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// WithClock подменяет источник времени для выпуска и проверки токенов.
func (j *MakerImpl) WithClock(now func() time.Time) *MakerImpl {
	j.now = now
	return j
}
