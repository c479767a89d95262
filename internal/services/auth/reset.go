package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/pharmacy-management/internal/lib/password"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const (
	// ResetTokenTTL срок действия токена сброса пароля.
	ResetTokenTTL   = time.Hour
	resetTokenBytes = 32
)

// newResetToken возвращает токен для письма (64 hex-символа) и его SHA-256 для хранения.
func newResetToken() (raw, digest string, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset выпускает токен сброса для владельца email, сохраняет его хэш
// со сроком действия час и отправляет ссылку письмом. Предыдущий токен перезаписывается.
//
// Токен возвращается и при ошибке доставки (ErrDeliveryFailed): он остаётся в базе
// и действителен до истечения срока. Отправка вместе с повторами укладывается в
// срок из WithMailTimeout.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	const op = "services.auth.RequestPasswordReset"
	log := s.log.With(slog.String("op", op), sl.Email(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "user with this email not found"))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	raw, digest, err := newResetToken()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(ResetTokenTTL)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	log.Info("reset token stored")

	mailCtx := ctx
	if s.mailTimeout > 0 {
		var cancel context.CancelFunc
		mailCtx, cancel = context.WithTimeout(ctx, s.mailTimeout)
		defer cancel()
	}
	if err = s.mailer.SendResetPasswordEmail(mailCtx, user.Email, raw); err != nil {
		log.Error("reset email not delivered", sl.Err(err))
		if !errors.Is(err, models.ErrDeliveryFailed) {
			err = fmt.Errorf("%w: %w", models.ErrDeliveryFailed, err)
		}
		return raw, fmt.Errorf("%s: %w", op, err)
	}
	return raw, nil
}

// ResetPassword проверяет токен сброса и одной операцией записи устанавливает новый
// пароль, очищая токен и срок его действия. Токен одноразовый.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "services.auth.ResetPassword"

	if len(token) != 2*resetTokenBytes {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	digest := hashResetToken(token)

	user, err := s.users.GetUserByResetToken(ctx, digest)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.ResetToken == nil || subtle.ConstantTimeCompare([]byte(*user.ResetToken), []byte(digest)) != 1 {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	if user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return fmt.Errorf("%s: %w", op, models.ErrExpiredToken)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.ResetPassword(ctx, user.ID, digest, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset", slog.String("op", op), slog.String("user_id", user.ID))
	return nil
}
