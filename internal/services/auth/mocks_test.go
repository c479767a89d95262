package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// memRepo хранит пользователей в памяти и повторяет семантику repository.Storage.
type memRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error // если задана, возвращается всеми методами
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*models.User)}
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *memRepo) put(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = clone(&u)
	return clone(&u)
}

func (r *memRepo) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, models.ErrUserExists
		}
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	r.users[user.ID] = clone(&user)
	return clone(&user), nil
}

func (r *memRepo) GetUser(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return clone(u), nil
}

func (r *memRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return clone(u), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) GetUserByResetToken(_ context.Context, tokenHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == tokenHash {
			return clone(u), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) UpdateUser(_ context.Context, user models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.users[user.ID]; !ok {
		return nil, models.ErrNotFound
	}
	r.users[user.ID] = clone(&user)
	return clone(&user), nil
}

func (r *memRepo) SetResetToken(_ context.Context, id, tokenHash string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.ResetToken = &tokenHash
	u.ResetTokenExpiry = &expiry
	return nil
}

func (r *memRepo) ResetPassword(_ context.Context, id, tokenHash, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.ResetToken == nil || *u.ResetToken != tokenHash {
		return models.ErrInvalidToken
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
	return nil
}

func (r *memRepo) CountAdmins(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	n := 0
	for _, u := range r.users {
		if u.RoleID == models.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) DeleteUser(ctx context.Context, id string, beforeDelete func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if u.RoleID == models.RoleAdmin {
		admins := 0
		for _, other := range r.users {
			if other.RoleID == models.RoleAdmin {
				admins++
			}
		}
		if admins <= 1 {
			return models.ErrProtectedAccount
		}
	}
	if beforeDelete != nil {
		beforeDelete(ctx)
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.users))
	for id := range r.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type AvatarStorageMock struct {
	mock.Mock
}

func (m *AvatarStorageMock) UploadAvatar(ctx context.Context, owner string, avatar *models.Avatar) (string, error) {
	args := m.Called(ctx, owner, avatar)
	return args.String(0), args.Error(1)
}

func (m *AvatarStorageMock) DeleteAvatar(ctx context.Context, publicURL string) error {
	args := m.Called(ctx, publicURL)
	return args.Error(0)
}

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}
