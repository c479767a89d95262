// Package services содержит бизнес-логику каталога препаратов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

// DrugRepository определяет методы для работы с препаратами в хранилище.
type DrugRepository interface {
	// CreateDrug добавляет препарат и возвращает сохранённую запись.
	CreateDrug(ctx context.Context, d models.Drug) (*models.Drug, error)
	// ListDrugs возвращает все препараты.
	ListDrugs(ctx context.Context) ([]*models.Drug, error)
	// UpdateDrug перезаписывает препарат по ID.
	UpdateDrug(ctx context.Context, id int64, d models.Drug) (*models.Drug, error)
	// RemoveDrug удаляет препарат и возвращает количество удалённых записей.
	RemoveDrug(ctx context.Context, id int64) (int64, error)
}

// DrugService реализует бизнес-логику каталога препаратов.
type DrugService struct {
	repo DrugRepository
	log  *slog.Logger
}

// NewDrugService создает новый экземпляр DrugService.
func NewDrugService(repo DrugRepository, log *slog.Logger) *DrugService {
	return &DrugService{
		repo: repo,
		log:  log,
	}
}

// Create проверяет данные и добавляет препарат.
func (s *DrugService) Create(ctx context.Context, req models.DummyDrug) (*models.Drug, error) {
	const op = "services.drug.Create"

	drug, err := toDrug(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreateDrug(ctx, drug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("drug created", slog.String("op", op), slog.Int64("id", created.ID))
	return created, nil
}

// List возвращает все препараты.
func (s *DrugService) List(ctx context.Context) ([]*models.Drug, error) {
	const op = "services.drug.List"

	drugs, err := s.repo.ListDrugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return drugs, nil
}

// Update перезаписывает препарат по ID.
func (s *DrugService) Update(ctx context.Context, id int64, req models.DummyDrug) (*models.Drug, error) {
	const op = "services.drug.Update"

	drug, err := toDrug(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := s.repo.UpdateDrug(ctx, id, drug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Remove удаляет препарат по ID.
func (s *DrugService) Remove(ctx context.Context, id int64) error {
	const op = "services.drug.Remove"

	n, err := s.repo.RemoveDrug(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "drug not found"))
	}
	s.log.Info("drug removed", slog.String("op", op), slog.Int64("id", id))
	return nil
}

func toDrug(req models.DummyDrug) (models.Drug, error) {
	mfg, err := time.Parse(models.DateLayout, req.MfgDate)
	if err != nil {
		return models.Drug{}, models.NewError(models.ErrValidation, "invalid mfg_date, expected YYYY-MM-DD")
	}
	exp, err := time.Parse(models.DateLayout, req.ExpDate)
	if err != nil {
		return models.Drug{}, models.NewError(models.ErrValidation, "invalid exp_date, expected YYYY-MM-DD")
	}
	if exp.Before(mfg) {
		return models.Drug{}, models.NewError(models.ErrValidation, "exp_date must not be earlier than mfg_date")
	}
	if req.Price.IsNegative() {
		return models.Drug{}, models.NewError(models.ErrValidation, "price must not be negative")
	}
	if req.Price.GreaterThan(models.MaxPrice) {
		return models.Drug{}, models.NewError(models.ErrValidation, "price is too large")
	}
	if req.Quantity < 0 {
		return models.Drug{}, models.NewError(models.ErrValidation, "quantity must not be negative")
	}
	return models.Drug{
		Name:         req.Name,
		Quantity:     req.Quantity,
		MfgDate:      mfg,
		ExpDate:      exp,
		Price:        req.Price,
		Manufacturer: req.Manufacturer,
		Description:  req.Description,
	}, nil
}
