package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta a crédito (fiado).
const (
	CreditStatusOutstanding   = "outstanding"    // sin abonos
	CreditStatusPartiallyPaid = "partially_paid" // con abonos parciales
	CreditStatusSettled       = "settled"        // saldada por completo
)

// CreditSale es la cuenta por cobrar de una venta con saldo pendiente.
// Invariante: OutstandingAmount = TotalAmount - PaidAmount, nunca negativa.
// Al llegar a cero la cuenta pasa a settled y la venta padre a completed.
type CreditSale struct {
	ID                string
	SaleID            string
	CustomerID        string
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            string
	DueDate           *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreditPayment es un abono aplicado a una venta a crédito. Append-only.
type CreditPayment struct {
	ID           string
	CreditSaleID string
	Amount       decimal.Decimal
	Method       string
	Reference    string
	ReceivedBy   string // UserID del cajero que recibió el abono
	CreatedAt    time.Time
}
