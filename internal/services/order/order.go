// Package services содержит бизнес-логику заказов.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// OrderRepository определяет методы для работы с заказами в хранилище.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o models.Order) (*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, id int64, o models.Order) (*models.Order, error)
	RemoveOrder(ctx context.Context, id int64) (int64, error)
}

// OrderService реализует бизнес-логику работы с заказами.
type OrderService struct {
	repo OrderRepository
	log  *slog.Logger
}

// NewOrderService создает новый экземпляр OrderService.
func NewOrderService(repo OrderRepository, log *slog.Logger) *OrderService {
	return &OrderService{
		repo: repo,
		log:  log,
	}
}

// Create оформляет заказ. Без явного статуса заказ создаётся в статусе pending.
func (s *OrderService) Create(ctx context.Context, req models.DummyOrder) (*models.Order, error) {
	const op = "services.order.Create"

	order, err := toOrder(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("order created", slog.String("op", op), slog.Int64("order_id", created.ID))
	return created, nil
}

// List возвращает все заказы.
func (s *OrderService) List(ctx context.Context) ([]*models.Order, error) {
	const op = "services.order.List"

	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// Update перезаписывает заказ по ID.
func (s *OrderService) Update(ctx context.Context, id int64, req models.DummyOrder) (*models.Order, error) {
	const op = "services.order.Update"

	order, err := toOrder(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := s.repo.UpdateOrder(ctx, id, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Remove удаляет заказ по ID.
func (s *OrderService) Remove(ctx context.Context, id int64) error {
	const op = "services.order.Remove"

	n, err := s.repo.RemoveOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "order not found"))
	}
	return nil
}

func toOrder(req models.DummyOrder) (models.Order, error) {
	if req.Quantity <= 0 {
		return models.Order{}, models.NewError(models.ErrValidation, "quantity must be positive")
	}
	if req.Price.IsNegative() {
		return models.Order{}, models.NewError(models.ErrValidation, "price must not be negative")
	}
	if req.Price.GreaterThan(models.MaxPrice) {
		return models.Order{}, models.NewError(models.ErrValidation, "price is too large")
	}
	status := req.Status
	switch status {
	case "":
		status = models.OrderPending
	case models.OrderPending, models.OrderProcessing, models.OrderCompleted, models.OrderCancelled:
	default:
		return models.Order{}, models.NewError(models.ErrValidation, "unknown order status")
	}
	return models.Order{
		Status:   status,
		Quantity: req.Quantity,
		Price:    req.Price,
	}, nil
}
