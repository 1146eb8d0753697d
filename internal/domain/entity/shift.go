package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un turno de caja.
const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

// Shift representa un turno de caja en un punto de venta. Solo puede existir
// un turno abierto por (outlet, usuario); toda venta referencia un turno
// abierto. Al cerrar se compara el efectivo declarado contra el esperado
// (base de apertura más pagos en efectivo recibidos durante el turno).
type Shift struct {
	ID             string
	OutletID       string
	UserID         string
	Status         string
	OpeningCash    decimal.Decimal
	ClosingCash    decimal.Decimal // efectivo declarado al cierre
	ExpectedCash   decimal.Decimal // calculado al cierre
	CashDifference decimal.Decimal // ClosingCash - ExpectedCash
	Note           string
	OpenedAt       time.Time
	ClosedAt       *time.Time
}
