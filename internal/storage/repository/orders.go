package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const orderColumns = `id, status, quantity, price, created_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.Status, &o.Quantity, &o.Price, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder сохраняет заказ.
func (s *Storage) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	const op = "storage.CreateOrder"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO orders (status, quantity, price)
			  VALUES ($1, $2, $3)
			  RETURNING ` + orderColumns
	res, err := scanOrder(s.DB.QueryRowContext(ctx, query, o.Status, o.Quantity, o.Price))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return res, nil
}

// ListOrders возвращает заказы, новые первыми.
func (s *Storage) ListOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "storage.ListOrders"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateOrder перезаписывает заказ по ID.
func (s *Storage) UpdateOrder(ctx context.Context, id int64, o models.Order) (*models.Order, error) {
	const op = "storage.UpdateOrder"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE orders SET status = $1, quantity = $2, price = $3
			  WHERE id = $4
			  RETURNING ` + orderColumns
	res, err := scanOrder(s.DB.QueryRowContext(ctx, query, o.Status, o.Quantity, o.Price, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return res, nil
}

// RemoveOrder удаляет заказ по ID и возвращает число удалённых строк.
func (s *Storage) RemoveOrder(ctx context.Context, id int64) (int64, error) {
	const op = "storage.RemoveOrder"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
