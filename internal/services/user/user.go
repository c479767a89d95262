// Package services содержит чтение справочника сотрудников.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// UserRepository определяет методы чтения пользователей.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// UserService отдаёт пользователей без хэшей паролей и данных сброса.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
	}
}

// List возвращает всех пользователей.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	const op = "services.user.List"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sanitize(users), nil
}

// ListByRole возвращает пользователей с ролью, заданной именем или числовым идентификатором.
func (s *UserService) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	const op = "services.user.ListByRole"

	r, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "invalid role"))
	}
	users, err := s.repo.ListUsersByRole(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sanitize(users), nil
}

// Get возвращает пользователя по ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "services.user.Get"

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "invalid ID format"))
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user.Sanitized(), nil
}

func sanitize(users []*models.User) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out
}
