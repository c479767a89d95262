package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/pharmacy-management/internal/lib/password"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// CreateUser создаёт учётную запись сотрудника. Если сохранение не удалось,
// уже загруженный аватар удаляется.
func (s *AuthService) CreateUser(ctx context.Context, req models.DummyUser, avatar *models.Avatar) (*models.User, error) {
	const op = "services.auth.CreateUser"

	if !req.RoleID.Valid() {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "invalid role_id"))
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		RoleID:       req.RoleID,
	}
	if avatar != nil {
		url, err := s.avatars.UploadAvatar(ctx, user.ID, avatar)
		if err != nil {
			return nil, fmt.Errorf("%s: upload avatar: %w", op, err)
		}
		user.Avatar = &url
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if user.Avatar != nil {
			s.dropAvatar(ctx, op, *user.Avatar)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user created", slog.String("op", op), slog.String("user_id", created.ID),
		slog.String("role", created.RoleID.String()))
	return created.Sanitized(), nil
}

// UpdateUser изменяет данные сотрудника от имени администратора.
// Понижение роли единственного администратора запрещено.
func (s *AuthService) UpdateUser(ctx context.Context, id string, req models.DummyUserUpdate, avatar *models.Avatar) (*models.User, error) {
	const op = "services.auth.UpdateUser"

	if err := parseUserID(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.RoleID != 0 && !req.RoleID.Valid() {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "invalid role_id"))
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.RoleID != 0 && req.RoleID != models.RoleAdmin && user.RoleID == models.RoleAdmin {
		if err = s.ensureNotLastAdmin(ctx); err != nil {
			if errors.Is(err, models.ErrProtectedAccount) {
				err = models.NewError(models.ErrProtectedAccount, "cannot change the role of the last admin account")
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.RoleID != 0 {
		user.RoleID = req.RoleID
	}

	updated, err := s.saveWithAvatar(ctx, op, user, avatar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// EditProfile изменяет профиль текущего пользователя. Смена пароля требует
// подтверждения текущим паролем.
func (s *AuthService) EditProfile(ctx context.Context, requester *models.User, req models.DummyProfile, avatar *models.Avatar) (*models.User, error) {
	const op = "services.auth.EditProfile"

	user, err := s.users.GetUser(ctx, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Password != "" {
		if req.OldPassword == "" {
			return nil, fmt.Errorf("%s: %w", op,
				models.NewError(models.ErrValidation, "current password is required to set a new password"))
		}
		if !password.Verify(user.PasswordHash, req.OldPassword) {
			return nil, fmt.Errorf("%s: %w", op,
				models.NewError(models.ErrInvalidCredentials, "current password is incorrect"))
		}
		hash, err := password.Hash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hash
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if err = s.ensureEmailFree(ctx, email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.Email = email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}

	updated, err := s.saveWithAvatar(ctx, op, user, avatar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteUser удаляет учётную запись targetID по запросу requester.
//
// Последнего администратора удалить нельзя никому. Не-администратор может удалить
// только себя и только подтвердив пароль. Аватар удаляется после повторной
// проверки в хранилище и до удаления записи, ошибка удаления аватара не прерывает
// операцию.
func (s *AuthService) DeleteUser(ctx context.Context, requester *models.User, targetID, rawPassword string) error {
	const op = "services.auth.DeleteUser"
	log := s.log.With(slog.String("op", op), slog.String("requester_id", requester.ID), slog.String("target_id", targetID))

	if err := parseUserID(targetID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	target, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if target.RoleID == models.RoleAdmin {
		if err = s.ensureNotLastAdmin(ctx); err != nil {
			log.Warn("refused to delete the last admin")
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if requester.RoleID != models.RoleAdmin {
		if requester.ID != target.ID {
			return fmt.Errorf("%s: %w", op,
				models.NewError(models.ErrForbidden, "you can only delete your own account"))
		}
		if rawPassword == "" {
			return fmt.Errorf("%s: %w", op,
				models.NewError(models.ErrValidation, "password is required to delete your account"))
		}
		if !password.Verify(target.PasswordHash, rawPassword) {
			return fmt.Errorf("%s: %w", op,
				models.NewError(models.ErrInvalidCredentials, "incorrect password"))
		}
	}

	var dropAvatar func(context.Context)
	if target.Avatar != nil {
		avatar := *target.Avatar
		dropAvatar = func(ctx context.Context) { s.dropAvatar(ctx, op, avatar) }
	}

	if err = s.users.DeleteUser(ctx, target.ID, dropAvatar); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("user deleted")
	return nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return models.ErrUserExists
	case errors.Is(err, models.ErrNotFound):
		return nil
	}
	return err
}

func (s *AuthService) ensureNotLastAdmin(ctx context.Context) error {
	n, err := s.users.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return models.ErrProtectedAccount
	}
	return nil
}

// saveWithAvatar сохраняет пользователя; новый аватар загружается до записи,
// старый удаляется после успешного сохранения, новый при неудаче.
func (s *AuthService) saveWithAvatar(ctx context.Context, op string, user *models.User, avatar *models.Avatar) (*models.User, error) {
	var oldAvatar, newAvatar string
	if avatar != nil {
		url, err := s.avatars.UploadAvatar(ctx, user.ID, avatar)
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		if user.Avatar != nil {
			oldAvatar = *user.Avatar
		}
		newAvatar = url
		user.Avatar = &newAvatar
	}

	updated, err := s.users.UpdateUser(ctx, *user)
	if err != nil {
		s.dropAvatar(ctx, op, newAvatar)
		return nil, err
	}
	s.dropAvatar(ctx, op, oldAvatar)
	return updated.Sanitized(), nil
}
