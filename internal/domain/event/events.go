// Package event define los eventos de dominio que el núcleo publica tras
// confirmar cada transacción. La entrega es en proceso, fire-and-forget y a lo
// sumo una vez; ningún suscriptor puede bloquear ni revertir la operación.
package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nombres de evento estables (clave de suscripción).
const (
	NameSaleCreated           = "sale.created"
	NameSaleStatusChanged     = "sale.status_changed"
	NameStockLevelChanged     = "stock.level_changed"
	NameCreditPaymentRecorded = "credit.payment_recorded"
	NameLoyaltyPointsChanged  = "loyalty.points_changed"
)

// Event es el contrato mínimo de un evento publicable.
type Event interface {
	EventName() string
}

// SaleCreated se publica tras confirmar una venta nueva.
type SaleCreated struct {
	SaleID        string
	OutletID      string
	ReceiptNumber string
	CustomerID    string
	Status        string
	GrandTotal    decimal.Decimal
	OccurredAt    time.Time
}

func (SaleCreated) EventName() string { return NameSaleCreated }

// SaleStatusChanged se publica cuando una venta cambia de estado después de
// creada (anulación, devolución, liquidación de crédito).
type SaleStatusChanged struct {
	SaleID         string
	PreviousStatus string
	NewStatus      string
	Reason         string
	OccurredAt     time.Time
}

func (SaleStatusChanged) EventName() string { return NameSaleStatusChanged }

// StockLevelChanged se publica por cada movimiento confirmado del libro de
// inventario.
type StockLevelChanged struct {
	OutletID         string
	ProductID        string
	VariantID        string
	MovementType     string
	Quantity         decimal.Decimal
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Reference        string
	OccurredAt       time.Time
}

func (StockLevelChanged) EventName() string { return NameStockLevelChanged }

// CreditPaymentRecorded se publica tras confirmar un abono a crédito.
type CreditPaymentRecorded struct {
	CreditSaleID string
	SaleID       string
	CustomerID   string
	Amount       decimal.Decimal
	Outstanding  decimal.Decimal
	Settled      bool
	OccurredAt   time.Time
}

func (CreditPaymentRecorded) EventName() string { return NameCreditPaymentRecorded }

// LoyaltyPointsChanged se publica tras confirmar cualquier movimiento de
// puntos (acumulación, redención, ajuste, expiración).
type LoyaltyPointsChanged struct {
	CustomerID   string
	Type         string
	Points       int64
	BalanceAfter int64
	Tier         string
	OccurredAt   time.Time
}

func (LoyaltyPointsChanged) EventName() string { return NameLoyaltyPointsChanged }
