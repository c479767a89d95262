package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

func TestStorage_CreateAndGetUser(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	created := factory.CreateUser(t, "Jane.Doe@Example.com", models.RolePharmacist)
	assert.Equal(t, "jane.doe@example.com", created.Email)
	assert.Equal(t, models.RolePharmacist, created.RoleID)
	assert.Nil(t, created.Avatar)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := storage.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	byEmail, err := storage.GetUserByEmail(ctx, "JANE.DOE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = storage.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = storage.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_CreateUser_DuplicateEmail(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "dup@example.com", models.RoleSalesman)

	_, err := storage.CreateUser(context.Background(), models.User{
		ID:           uuid.NewString(),
		FirstName:    "Other",
		LastName:     "User",
		Email:        "DUP@example.com",
		PasswordHash: "hash",
		RoleID:       models.RoleSalesman,
	})
	assert.ErrorIs(t, err, models.ErrUserExists)
}

func TestStorage_ListUsersByRole(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	factory.CreateUser(t, "a1@example.com", models.RoleAdmin)
	factory.CreateUser(t, "m1@example.com", models.RoleManager)
	factory.CreateUser(t, "m2@example.com", models.RoleManager)

	all, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	managers, err := storage.ListUsersByRole(ctx, models.RoleManager)
	require.NoError(t, err)
	assert.Len(t, managers, 2)

	salesmen, err := storage.ListUsersByRole(ctx, models.RoleSalesman)
	require.NoError(t, err)
	assert.NotNil(t, salesmen)
	assert.Empty(t, salesmen)
}

func TestStorage_UpdateUser(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	u := factory.CreateUser(t, "upd@example.com", models.RoleSalesman)
	avatar := "https://storage/avatars/users/x.png"
	u.FirstName = "Changed"
	u.RoleID = models.RoleManager
	u.Avatar = &avatar

	got, err := storage.UpdateUser(ctx, *u)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.FirstName)
	assert.Equal(t, models.RoleManager, got.RoleID)
	require.NotNil(t, got.Avatar)
	assert.Equal(t, avatar, *got.Avatar)

	u.ID = uuid.NewString()
	_, err = storage.UpdateUser(ctx, *u)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_ResetTokenLifecycle(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	u := factory.CreateUser(t, "reset@example.com", models.RoleSalesman)
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	require.NoError(t, storage.SetResetToken(ctx, u.ID, "digest-1", expiry))
	require.NoError(t, storage.SetResetToken(ctx, u.ID, "digest-2", expiry))

	_, err := storage.GetUserByResetToken(ctx, "digest-1")
	assert.ErrorIs(t, err, models.ErrNotFound, "a new request overwrites the previous token")

	got, err := storage.GetUserByResetToken(ctx, "digest-2")
	require.NoError(t, err)
	require.NotNil(t, got.ResetTokenExpiry)
	assert.True(t, expiry.Equal(*got.ResetTokenExpiry))

	require.NoError(t, storage.ResetPassword(ctx, u.ID, "digest-2", "new-hash"))

	after, err := storage.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", after.PasswordHash)
	assert.Nil(t, after.ResetToken)
	assert.Nil(t, after.ResetTokenExpiry)

	err = storage.ResetPassword(ctx, u.ID, "digest-2", "other-hash")
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	err = storage.SetResetToken(ctx, uuid.NewString(), "digest-3", expiry)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_ClearExpiredResetTokens(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := factory.CreateUser(t, "expired@example.com", models.RoleSalesman)
	fresh := factory.CreateUser(t, "fresh@example.com", models.RoleSalesman)
	require.NoError(t, storage.SetResetToken(ctx, expired.ID, "old", now.Add(-time.Minute)))
	require.NoError(t, storage.SetResetToken(ctx, fresh.ID, "new", now.Add(time.Hour)))

	n, err := storage.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = storage.GetUserByResetToken(ctx, "old")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = storage.GetUserByResetToken(ctx, "new")
	assert.NoError(t, err)

	n, err = storage.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorage_DeleteUser(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, f *TestDataFactory) string
		wantErr error
	}{
		{
			name: "regular user",
			setup: func(t *testing.T, f *TestDataFactory) string {
				f.CreateUser(t, "admin@example.com", models.RoleAdmin)
				return f.CreateUser(t, "sales@example.com", models.RoleSalesman).ID
			},
		},
		{
			name: "sole admin is protected",
			setup: func(t *testing.T, f *TestDataFactory) string {
				return f.CreateUser(t, "admin@example.com", models.RoleAdmin).ID
			},
			wantErr: models.ErrProtectedAccount,
		},
		{
			name: "one of two admins",
			setup: func(t *testing.T, f *TestDataFactory) string {
				f.CreateUser(t, "admin2@example.com", models.RoleAdmin)
				return f.CreateUser(t, "admin1@example.com", models.RoleAdmin).ID
			},
		},
		{
			name: "missing user",
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return uuid.NewString()
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := setupTestDatabase(t)
			id := tt.setup(t, NewTestDataFactory(storage))

			hooks := 0
			err := storage.DeleteUser(context.Background(), id, func(context.Context) { hooks++ })
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, hooks, "hook must not run for a refused deletion")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, hooks)
			_, err = storage.GetUser(context.Background(), id)
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestStorage_DeleteUser_ConcurrentAdmins(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	a1 := factory.CreateUser(t, "a1@example.com", models.RoleAdmin)
	a2 := factory.CreateUser(t, "a2@example.com", models.RoleAdmin)

	var (
		wg    sync.WaitGroup
		hooks atomic.Int32
	)
	errs := make([]error, 2)
	for i, id := range []string{a1.ID, a2.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = storage.DeleteUser(context.Background(), id, func(context.Context) { hooks.Add(1) })
		}(i, id)
	}
	wg.Wait()

	n, err := storage.CountAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "exactly one admin must survive")

	protected := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, models.ErrProtectedAccount)
			protected++
		}
	}
	assert.Equal(t, 1, protected)
	assert.Equal(t, int32(1), hooks.Load(), "only the permitted deletion runs the hook")
}

func TestStorage_CancelledContext(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, context.Canceled)
}
