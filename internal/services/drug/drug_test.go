package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateDrug(ctx context.Context, d models.Drug) (*models.Drug, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Drug), args.Error(1)
}

func (m *RepoMock) ListDrugs(ctx context.Context) ([]*models.Drug, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Drug), args.Error(1)
}

func (m *RepoMock) UpdateDrug(ctx context.Context, id int64, d models.Drug) (*models.Drug, error) {
	args := m.Called(ctx, id, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Drug), args.Error(1)
}

func (m *RepoMock) RemoveDrug(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validDrug() models.DummyDrug {
	return models.DummyDrug{
		Name:         "Ibuprofen",
		Quantity:     40,
		MfgDate:      "2025-01-10",
		ExpDate:      "2027-01-10",
		Price:        decimal.RequireFromString("4.99"),
		Manufacturer: "Acme Pharma",
	}
}

func TestDrugService_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(r *RepoMock)
		req       func() models.DummyDrug
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(r *RepoMock) {
				r.On("CreateDrug", mock.Anything, mock.MatchedBy(func(d models.Drug) bool {
					return d.Name == "Ibuprofen" &&
						d.MfgDate.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)) &&
						d.Price.Equal(decimal.RequireFromString("4.99"))
				})).Return(&models.Drug{ID: 1, Name: "Ibuprofen"}, nil).Once()
			},
			req: validDrug,
		},
		{
			name: "same day expiry is allowed",
			setupMock: func(r *RepoMock) {
				r.On("CreateDrug", mock.Anything, mock.Anything).Return(&models.Drug{ID: 2}, nil).Once()
			},
			req: func() models.DummyDrug {
				d := validDrug()
				d.ExpDate = d.MfgDate
				return d
			},
		},
		{
			name:      "bad date",
			setupMock: func(_ *RepoMock) {},
			req: func() models.DummyDrug {
				d := validDrug()
				d.MfgDate = "10-01-2025"
				return d
			},
			wantErr: models.ErrValidation,
		},
		{
			name:      "expiry before manufacture",
			setupMock: func(_ *RepoMock) {},
			req: func() models.DummyDrug {
				d := validDrug()
				d.ExpDate = "2024-01-10"
				return d
			},
			wantErr: models.ErrValidation,
		},
		{
			name:      "negative price",
			setupMock: func(_ *RepoMock) {},
			req: func() models.DummyDrug {
				d := validDrug()
				d.Price = decimal.RequireFromString("-1")
				return d
			},
			wantErr: models.ErrValidation,
		},
		{
			name:      "price does not fit the column",
			setupMock: func(_ *RepoMock) {},
			req: func() models.DummyDrug {
				d := validDrug()
				d.Price = decimal.RequireFromString("10000000000")
				return d
			},
			wantErr: models.ErrValidation,
		},
		{
			name:      "negative quantity",
			setupMock: func(_ *RepoMock) {},
			req: func() models.DummyDrug {
				d := validDrug()
				d.Quantity = -1
				return d
			},
			wantErr: models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewDrugService(repo, newNoopLogger())
			tt.setupMock(repo)

			got, err := svc.Create(context.Background(), tt.req())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateDrug", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, got.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestDrugService_List(t *testing.T) {
	stored := []*models.Drug{{ID: 1, Name: "Aspirin"}, {ID: 2, Name: "Paracetamol"}}

	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListDrugs", mock.Anything).Return(stored, nil).Once()

		svc := NewDrugService(repo, newNoopLogger())
		got, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, stored, got)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListDrugs", mock.Anything).Return(nil, errors.New("db down")).Once()

		svc := NewDrugService(repo, newNoopLogger())
		_, err := svc.List(context.Background())
		assert.Error(t, err)
	})
}

func TestDrugService_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateDrug", mock.Anything, int64(5), mock.Anything).Return(&models.Drug{ID: 5}, nil).Once()

		svc := NewDrugService(repo, newNoopLogger())
		got, err := svc.Update(context.Background(), 5, validDrug())
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateDrug", mock.Anything, int64(5), mock.Anything).Return(nil, models.ErrNotFound).Once()

		svc := NewDrugService(repo, newNoopLogger())
		_, err := svc.Update(context.Background(), 5, validDrug())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("invalid payload is not stored", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewDrugService(repo, newNoopLogger())

		req := validDrug()
		req.ExpDate = "2027-02-30"
		_, err := svc.Update(context.Background(), 5, req)
		assert.ErrorIs(t, err, models.ErrValidation)
		repo.AssertNotCalled(t, "UpdateDrug", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDrugService_Remove(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(r *RepoMock)
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(r *RepoMock) {
				r.On("RemoveDrug", mock.Anything, int64(3)).Return(int64(1), nil).Once()
			},
		},
		{
			name: "nothing removed",
			setupMock: func(r *RepoMock) {
				r.On("RemoveDrug", mock.Anything, int64(3)).Return(int64(0), nil).Once()
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMock(repo)
			svc := NewDrugService(repo, newNoopLogger())

			err := svc.Remove(context.Background(), 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
