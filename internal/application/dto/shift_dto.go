package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenShiftRequest body para POST /api/shifts/open.
type OpenShiftRequest struct {
	OutletID    string          `json:"outlet_id" validate:"required,uuid"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
	Note        string          `json:"note,omitempty"`
}

// CloseShiftRequest body para POST /api/shifts/:id/close.
// ClosingCash es el efectivo contado y declarado por el cajero.
type CloseShiftRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash" validate:"required"`
	Note        string          `json:"note,omitempty"`
}

// ShiftResponse turno de caja en respuestas.
type ShiftResponse struct {
	ID             string          `json:"id"`
	OutletID       string          `json:"outlet_id"`
	UserID         string          `json:"user_id"`
	Status         string          `json:"status"`
	OpeningCash    decimal.Decimal `json:"opening_cash"`
	ClosingCash    decimal.Decimal `json:"closing_cash,omitempty"`
	ExpectedCash   decimal.Decimal `json:"expected_cash,omitempty"`
	CashDifference decimal.Decimal `json:"cash_difference,omitempty"`
	Note           string          `json:"note,omitempty"`
	OpenedAt       time.Time       `json:"opened_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
}

// ShiftListResponse lista paginada de turnos.
type ShiftListResponse struct {
	Items []ShiftResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
