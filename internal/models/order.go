package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// Order заказ покупателя.
type Order struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// DummyOrder используется для приёма данных заказа из JSON-запроса.
type DummyOrder struct {
	Status   string          `json:"status" validate:"omitempty,oneof=pending processing completed cancelled"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Price    decimal.Decimal `json:"price"`
}
