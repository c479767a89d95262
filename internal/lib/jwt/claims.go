package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserID               string      `json:"id"`   // Идентификатор пользователя
	Role                 models.Role `json:"role"` // Роль пользователя
	jwt.RegisteredClaims             // ExpiresAt, IssuedAt
}

// GenerateToken создает JWT токен с идентификатором и ролью пользователя.
//
// Срок действия фиксируется при выпуске: now + tokenTTL.
func (j *MakerImpl) GenerateToken(userID string, role models.Role) (string, error) {
	const op = "jwt.GenerateToken"
	issuedAt := j.now()
	claims := CustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись, алгоритм и срок действия токена
// и возвращает CustomClaims. Токен без exp отклоняется.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
