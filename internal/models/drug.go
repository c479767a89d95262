package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout формат дат в запросах и ответах API.
const DateLayout = "2006-01-02"

// MaxPrice наибольшая цена, которая помещается в столбец NUMERIC(12, 2).
var MaxPrice = decimal.RequireFromString("9999999999.99")

// Drug препарат на складе аптеки.
type Drug struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	MfgDate      time.Time       `json:"mfg_date"`
	ExpDate      time.Time       `json:"exp_date"`
	Price        decimal.Decimal `json:"price"`
	Manufacturer string          `json:"manufacturer"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DummyDrug используется для приёма данных из JSON-запроса.
// Даты приходят строками в формате 2006-01-02.
type DummyDrug struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Quantity     int             `json:"quantity" validate:"min=0"`
	MfgDate      string          `json:"mfg_date" validate:"required,datetime=2006-01-02"`
	ExpDate      string          `json:"exp_date" validate:"required,datetime=2006-01-02"`
	Price        decimal.Decimal `json:"price"`
	Manufacturer string          `json:"manufacturer" validate:"max=255"`
	Description  string          `json:"description"`
}
