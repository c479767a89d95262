package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/pharmacy-management/internal/migrations"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("pharmacy"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	path, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB, path)
	require.NoError(t, err)

	return storage
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с указанной ролью.
func (f *TestDataFactory) CreateUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u, err := f.storage.CreateUser(context.Background(), models.User{
		ID:           uuid.NewString(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Phone:        "+10000000000",
		PasswordHash: "hash",
		RoleID:       role,
	})
	require.NoError(t, err)
	return u
}

// CreateDrug создает тестовый препарат.
func (f *TestDataFactory) CreateDrug(t *testing.T, name string) *models.Drug {
	t.Helper()
	d, err := f.storage.CreateDrug(context.Background(), models.Drug{
		Name:         name,
		Quantity:     10,
		MfgDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpDate:      time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:        decimal.RequireFromString("12.50"),
		Manufacturer: "Acme Pharma",
	})
	require.NoError(t, err)
	return d
}
