package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *RepoMock) ListOrders(ctx context.Context) ([]*models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *RepoMock) UpdateOrder(ctx context.Context, id int64, o models.Order) (*models.Order, error) {
	args := m.Called(ctx, id, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *RepoMock) RemoveOrder(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestOrderService_Create(t *testing.T) {
	price := decimal.RequireFromString("19.90")

	tests := []struct {
		name       string
		req        models.DummyOrder
		setupMocks func(r *RepoMock)
		wantStatus string
		wantErr    error
	}{
		{
			name: "default status is pending",
			req:  models.DummyOrder{Quantity: 2, Price: price},
			setupMocks: func(r *RepoMock) {
				r.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o models.Order) bool {
					return o.Status == models.OrderPending && o.Quantity == 2 && o.Price.Equal(price)
				})).Return(&models.Order{ID: 1, Status: models.OrderPending}, nil).Once()
			},
			wantStatus: models.OrderPending,
		},
		{
			name: "explicit status kept",
			req:  models.DummyOrder{Status: models.OrderProcessing, Quantity: 1, Price: price},
			setupMocks: func(r *RepoMock) {
				r.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o models.Order) bool {
					return o.Status == models.OrderProcessing
				})).Return(&models.Order{ID: 2, Status: models.OrderProcessing}, nil).Once()
			},
			wantStatus: models.OrderProcessing,
		},
		{
			name:       "unknown status",
			req:        models.DummyOrder{Status: "shipped", Quantity: 1, Price: price},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name:       "zero quantity",
			req:        models.DummyOrder{Quantity: 0, Price: price},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name:       "negative price",
			req:        models.DummyOrder{Quantity: 1, Price: decimal.NewFromInt(-5)},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name:       "price does not fit the column",
			req:        models.DummyOrder{Quantity: 1, Price: decimal.RequireFromString("10000000000")},
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name: "largest storable price",
			req:  models.DummyOrder{Quantity: 1, Price: models.MaxPrice},
			setupMocks: func(r *RepoMock) {
				r.On("CreateOrder", mock.Anything, mock.Anything).
					Return(&models.Order{ID: 1, Status: models.OrderPending}, nil).Once()
			},
			wantStatus: models.OrderPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := NewOrderService(repo, newNoopLogger())

			got, err := svc.Create(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderService_List(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListOrders", mock.Anything).Return([]*models.Order{{ID: 2}, {ID: 1}}, nil).Once()
	svc := NewOrderService(repo, newNoopLogger())

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	repo = new(RepoMock)
	repo.On("ListOrders", mock.Anything).Return(nil, errors.New("db down")).Once()
	svc = NewOrderService(repo, newNoopLogger())
	_, err = svc.List(context.Background())
	assert.Error(t, err)
}

func TestOrderService_Update(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateOrder", mock.Anything, int64(9), mock.Anything).Return(nil, models.ErrNotFound).Once()
	svc := NewOrderService(repo, newNoopLogger())

	_, err := svc.Update(context.Background(), 9, models.DummyOrder{Status: models.OrderCompleted, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestOrderService_Remove(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RemoveOrder", mock.Anything, int64(1)).Return(int64(1), nil).Once()
	repo.On("RemoveOrder", mock.Anything, int64(2)).Return(int64(0), nil).Once()
	svc := NewOrderService(repo, newNoopLogger())

	assert.NoError(t, svc.Remove(context.Background(), 1))
	assert.ErrorIs(t, svc.Remove(context.Background(), 2), models.ErrNotFound)
	repo.AssertExpectations(t)
}
