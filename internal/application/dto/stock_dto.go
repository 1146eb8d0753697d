package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/movements.
// Para type=transfer se usan FromOutletID/ToOutletID; para el resto, OutletID.
type AdjustStockRequest struct {
	OutletID     string          `json:"outlet_id,omitempty"`
	FromOutletID string          `json:"from_outlet_id,omitempty"`
	ToOutletID   string          `json:"to_outlet_id,omitempty"`
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	VariantID    string          `json:"variant_id,omitempty"`
	Type         string          `json:"type" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	Reference    string          `json:"reference,omitempty"`
	Note         string          `json:"note,omitempty"`
}

// SetStockAlertRequest body para PUT /api/stock/alert.
type SetStockAlertRequest struct {
	OutletID  string          `json:"outlet_id" validate:"required,uuid"`
	ProductID string          `json:"product_id" validate:"required,uuid"`
	VariantID string          `json:"variant_id,omitempty"`
	Threshold decimal.Decimal `json:"threshold"`
}

// StockLevelResponse existencia actual de una clave (outlet, producto, variante).
type StockLevelResponse struct {
	OutletID      string          `json:"outlet_id"`
	ProductID     string          `json:"product_id"`
	VariantID     string          `json:"variant_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	LowStockAlert decimal.Decimal `json:"low_stock_alert"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockMovementResponse entrada del libro de inventario.
type StockMovementResponse struct {
	ID               string          `json:"id"`
	OutletID         string          `json:"outlet_id"`
	ProductID        string          `json:"product_id"`
	VariantID        string          `json:"variant_id,omitempty"`
	Type             string          `json:"type"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Reference        string          `json:"reference,omitempty"`
	Note             string          `json:"note,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	CreatedBy        string          `json:"created_by"`
}

// StockDiscrepancyResponse fila cuya cantidad no cuadra con su libro.
type StockDiscrepancyResponse struct {
	OutletID      string          `json:"outlet_id"`
	ProductID     string          `json:"product_id"`
	VariantID     string          `json:"variant_id,omitempty"`
	LevelQuantity decimal.Decimal `json:"level_quantity"`
	MovementSum   decimal.Decimal `json:"movement_sum"`
	Difference    decimal.Decimal `json:"difference"`
}
