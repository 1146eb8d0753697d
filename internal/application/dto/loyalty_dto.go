package dto

import "github.com/shopspring/decimal"

// EarnPointsRequest body para POST /api/loyalty/earn.
// Amount es el monto elegible (normalmente el total de la venta).
type EarnPointsRequest struct {
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	SaleID     string          `json:"sale_id,omitempty"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// RedeemPointsRequest body para POST /api/loyalty/redeem.
type RedeemPointsRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	SaleID     string `json:"sale_id,omitempty"`
	Points     int64  `json:"points" validate:"required,min=1"`
}

// AdjustPointsRequest body para POST /api/loyalty/adjust (solo admin).
// Points lleva signo; Note es obligatoria para dejar rastro del porqué.
type AdjustPointsRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Points     int64  `json:"points" validate:"required"`
	Note       string `json:"note" validate:"required,min=3"`
}

// ExpirePointsRequest body para POST /api/loyalty/expire (solo admin).
type ExpirePointsRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Points     int64  `json:"points" validate:"required,min=1"`
	Note       string `json:"note,omitempty"`
}

// LoyaltyResultResponse resultado de un movimiento de puntos.
// Value solo aplica a redenciones (valor del descuento en moneda).
type LoyaltyResultResponse struct {
	CustomerID   string          `json:"customer_id"`
	Type         string          `json:"type"`
	Points       int64           `json:"points"`
	BalanceAfter int64           `json:"balance_after"`
	Tier         string          `json:"tier,omitempty"`
	Value        decimal.Decimal `json:"value,omitempty"`
}

// LoyaltyTierRequest nivel del programa en creación/actualización.
type LoyaltyTierRequest struct {
	Name            string          `json:"name" validate:"required"`
	MinPoints       int64           `json:"min_points" validate:"min=0"`
	PointMultiplier decimal.Decimal `json:"point_multiplier"`
}

// SaveLoyaltyProgramRequest body para PUT /api/loyalty/program.
type SaveLoyaltyProgramRequest struct {
	Name           string               `json:"name" validate:"required"`
	IsActive       bool                 `json:"is_active"`
	AmountPerPoint decimal.Decimal      `json:"amount_per_point" validate:"required"`
	RedemptionRate decimal.Decimal      `json:"redemption_rate" validate:"required"`
	Tiers          []LoyaltyTierRequest `json:"tiers"`
}

// LoyaltyTierResponse nivel en respuestas.
type LoyaltyTierResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	MinPoints       int64           `json:"min_points"`
	PointMultiplier decimal.Decimal `json:"point_multiplier"`
}

// LoyaltyProgramResponse programa con niveles.
type LoyaltyProgramResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	IsActive       bool                  `json:"is_active"`
	AmountPerPoint decimal.Decimal       `json:"amount_per_point"`
	RedemptionRate decimal.Decimal       `json:"redemption_rate"`
	Tiers          []LoyaltyTierResponse `json:"tiers"`
}

// LoyaltyTransactionResponse entrada del libro de puntos.
type LoyaltyTransactionResponse struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	SaleID       string `json:"sale_id,omitempty"`
	Type         string `json:"type"`
	Points       int64  `json:"points"`
	BalanceAfter int64  `json:"balance_after"`
	Note         string `json:"note,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// LoyaltyTransactionListResponse historial paginado de puntos de un cliente.
type LoyaltyTransactionListResponse struct {
	Items []LoyaltyTransactionResponse `json:"items"`
	Page  PageResponse                 `json:"page"`
}
