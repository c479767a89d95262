// Package password реализует хеширование и проверку паролей на bcrypt.
//
// Hash создает bcrypt-хеш пароля для хранения, Verify сравнивает пароль с сохранённым хешем.
package password

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func Hash(password string) (string, error) {
	const op = "password.Hash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// Verify сообщает, соответствует ли пароль bcrypt‑хэшу.
// Пустой или повреждённый хэш даёт false.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// VerifyDummy выполняет сравнение с заранее вычисленным хэшем, чтобы вход
// с неизвестным email занимал столько же времени, сколько и с известным.
func VerifyDummy(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
