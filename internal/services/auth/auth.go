// Package services содержит бизнес-логику аутентификации и управления учётными записями:
// вход, проверку сессии, сброс пароля, создание, изменение и удаление пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/pharmacy-management/internal/lib/jwt"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/password"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) (*models.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error
	ResetPassword(ctx context.Context, id, tokenHash, passwordHash string) error
	CountAdmins(ctx context.Context) (int, error)
	DeleteUser(ctx context.Context, id string, beforeDelete func(ctx context.Context)) error
}

// AvatarStorage хранилище изображений профиля.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, owner string, avatar *models.Avatar) (string, error)
	DeleteAvatar(ctx context.Context, publicURL string) error
}

// Mailer отправляет письмо со ссылкой сброса пароля.
type Mailer interface {
	SendResetPasswordEmail(ctx context.Context, email, token string) error
}

// AuthService отвечает за вход, проверку сессии и жизненный цикл учётных записей.
type AuthService struct {
	users    UserRepository
	avatars  AvatarStorage
	mailer   Mailer
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time

	mailTimeout time.Duration
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, avatars AvatarStorage, mailer Mailer, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		avatars:  avatars,
		mailer:   mailer,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени (срок действия токенов сброса).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// WithMailTimeout ограничивает отправку письма сброса сроком d. Ноль снимает ограничение.
func (s *AuthService) WithMailTimeout(d time.Duration) *AuthService {
	s.mailTimeout = d
	return s
}

// Login проверяет email и пароль и выпускает сессионный токен.
// Неизвестный email и неверный пароль дают одну и ту же ошибку ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			password.VerifyDummy(rawPassword)
			return "", nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(user.PasswordHash, rawPassword) {
		return "", nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.RoleID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Sanitized(), nil
}

// Authenticate проверяет сессионный токен и заново читает пользователя из базы,
// поэтому удалённые учётные записи и изменённые роли учитываются сразу.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, models.ErrUnauthenticated, err)
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: user no longer exists", op, models.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user.Sanitized(), nil
}

// EnsureAdmin создаёт администратора с указанными данными, если в системе нет ни одного.
// Возвращает true, если учётная запись была создана.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword string) (bool, error) {
	const op = "services.auth.EnsureAdmin"
	if email == "" || rawPassword == "" {
		return false, nil
	}

	n, err := s.users.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := password.Hash(rawPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.users.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		RoleID:       models.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("bootstrap admin created", slog.String("op", op), sl.Email(email))
	return true, nil
}

// dropAvatar удаляет изображение, не прерывая операцию при ошибке.
func (s *AuthService) dropAvatar(ctx context.Context, op, url string) {
	if url == "" {
		return
	}
	if err := s.avatars.DeleteAvatar(ctx, url); err != nil {
		s.log.Warn("failed to delete avatar", slog.String("op", op), slog.String("avatar", url), sl.Err(err))
	}
}

func parseUserID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.NewError(models.ErrValidation, "invalid ID format")
	}
	return nil
}
