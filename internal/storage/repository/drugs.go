package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const drugColumns = `id, name, quantity, mfg_date, exp_date, price, manufacturer, description, created_at`

func scanDrug(row rowScanner) (*models.Drug, error) {
	var d models.Drug
	if err := row.Scan(&d.ID, &d.Name, &d.Quantity, &d.MfgDate, &d.ExpDate, &d.Price,
		&d.Manufacturer, &d.Description, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDrug добавляет препарат и возвращает сохранённую запись.
func (s *Storage) CreateDrug(ctx context.Context, d models.Drug) (*models.Drug, error) {
	const op = "storage.CreateDrug"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO drugs (name, quantity, mfg_date, exp_date, price, manufacturer, description)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + drugColumns
	res, err := scanDrug(s.DB.QueryRowContext(ctx, query,
		d.Name, d.Quantity, d.MfgDate, d.ExpDate, d.Price, d.Manufacturer, d.Description))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return res, nil
}

// ListDrugs возвращает все препараты.
func (s *Storage) ListDrugs(ctx context.Context) ([]*models.Drug, error) {
	const op = "storage.ListDrugs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+drugColumns+` FROM drugs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Drug, 0)
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateDrug перезаписывает препарат по ID.
func (s *Storage) UpdateDrug(ctx context.Context, id int64, d models.Drug) (*models.Drug, error) {
	const op = "storage.UpdateDrug"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE drugs
			  SET name = $1, quantity = $2, mfg_date = $3, exp_date = $4,
			      price = $5, manufacturer = $6, description = $7
			  WHERE id = $8
			  RETURNING ` + drugColumns
	res, err := scanDrug(s.DB.QueryRowContext(ctx, query,
		d.Name, d.Quantity, d.MfgDate, d.ExpDate, d.Price, d.Manufacturer, d.Description, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return res, nil
}

// RemoveDrug удаляет препарат по ID и возвращает число удалённых строк.
func (s *Storage) RemoveDrug(ctx context.Context, id int64) (int64, error) {
	const op = "storage.RemoveDrug"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM drugs WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
