package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const userColumns = `id, f_name, l_name, email, phone, password, role_id, avatar,
	reset_token, reset_token_expiry, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                   models.User
		avatar, resetToken  sql.NullString
		resetTokenExpiresAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash,
		&u.RoleID, &avatar, &resetToken, &resetTokenExpiresAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if resetToken.Valid {
		u.ResetToken = &resetToken.String
	}
	if resetTokenExpiresAt.Valid {
		u.ResetTokenExpiry = &resetTokenExpiresAt.Time
	}
	return &u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// CreateUser сохраняет нового пользователя. Email приводится к нижнему регистру;
// занятый email даёт models.ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (id, f_name, l_name, email, phone, password, role_id, avatar)
			  VALUES ($1, $2, $3, LOWER($4), $5, $6, $7, $8)
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Phone, user.PasswordHash,
		user.RoleID, nullString(user.Avatar)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByResetToken возвращает владельца хэша токена сброса пароля.
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

func (s *Storage) listUsers(ctx context.Context, op, query string, args ...any) ([]*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUsers возвращает всех пользователей в порядке создания.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.listUsers(ctx, "storage.ListUsers",
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
}

// ListUsersByRole возвращает пользователей с указанной ролью.
func (s *Storage) ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return s.listUsers(ctx, "storage.ListUsersByRole",
		`SELECT `+userColumns+` FROM users WHERE role_id = $1 ORDER BY created_at, id`, role)
}

// UpdateUser перезаписывает изменяемые поля пользователя и возвращает результат.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE users
			  SET f_name = $1, l_name = $2, email = LOWER($3), phone = $4,
			      role_id = $5, avatar = $6, password = $7
			  WHERE id = $8
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.Phone,
		user.RoleID, nullString(user.Avatar), user.PasswordHash, user.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// SetResetToken сохраняет хэш токена сброса и срок его действия,
// перезаписывая ранее выданный токен.
func (s *Storage) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	const op = "storage.SetResetToken"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`,
		tokenHash, expiry, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectAffected(res, op, models.ErrNotFound)
}

// ResetPassword одним UPDATE устанавливает новый хэш пароля и очищает токен сброса.
// Если токен уже использован или заменён, возвращает models.ErrInvalidToken.
func (s *Storage) ResetPassword(ctx context.Context, id, tokenHash, passwordHash string) error {
	const op = "storage.ResetPassword"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users
		 SET password = $1, reset_token = NULL, reset_token_expiry = NULL
		 WHERE id = $2 AND reset_token = $3`,
		passwordHash, id, tokenHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectAffected(res, op, models.ErrInvalidToken)
}

// ClearExpiredResetTokens удаляет токены сброса, срок действия которых истёк к моменту now.
func (s *Storage) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.ClearExpiredResetTokens"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET reset_token = NULL, reset_token_expiry = NULL
		 WHERE reset_token IS NOT NULL AND reset_token_expiry < $1`,
		now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CountAdmins возвращает количество администраторов.
func (s *Storage) CountAdmins(ctx context.Context) (int, error) {
	const op = "storage.CountAdmins"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role_id = $1`, models.RoleAdmin).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// DeleteUser удаляет пользователя в транзакции. Строки администраторов блокируются
// до проверки, поэтому два параллельных удаления не могут убрать последнего
// администратора: второе получит models.ErrProtectedAccount.
// beforeDelete, если задан, вызывается внутри транзакции после проверки и до
// удаления строки, то есть только для разрешённого удаления.
func (s *Storage) DeleteUser(ctx context.Context, id string, beforeDelete func(ctx context.Context)) error {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM users WHERE role_id = $1 ORDER BY id FOR UPDATE`, models.RoleAdmin)
		if err != nil {
			return err
		}
		admins := 0
		for rows.Next() {
			admins++
		}
		if err = rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()

		var role models.Role
		if err = tx.QueryRowContext(ctx,
			`SELECT role_id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role); err != nil {
			return mapError(err)
		}
		if role == models.RoleAdmin && admins <= 1 {
			return models.ErrProtectedAccount
		}

		if beforeDelete != nil {
			beforeDelete(ctx)
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func expectAffected(res sql.Result, op string, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, none)
	}
	return nil
}
