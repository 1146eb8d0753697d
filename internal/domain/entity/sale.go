package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. El flujo es pending → {completed | credit |
// partially_paid} → {voided | refunded}; voided y refunded son terminales.
const (
	SaleStatusPending       = "pending"
	SaleStatusCompleted     = "completed"
	SaleStatusCredit        = "credit"         // con cliente, sin abono inicial
	SaleStatusPartiallyPaid = "partially_paid" // con cliente, abono inicial parcial
	SaleStatusVoided        = "voided"
	SaleStatusRefunded      = "refunded"
)

// Métodos de pago aceptados en caja.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodQR       = "qr"
	PaymentMethodPoints   = "points" // redención de puntos de fidelización
	PaymentMethodOther    = "other"
)

// ValidPaymentMethod indica si el método es uno de los aceptados.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer,
		PaymentMethodQR, PaymentMethodPoints, PaymentMethodOther:
		return true
	}
	return false
}

// Sale representa la cabecera de una venta de mostrador.
// ReceiptNumber es único en todo el sistema (índice en base de datos).
type Sale struct {
	ID             string
	OutletID       string
	ShiftID        string
	EmployeeID     string
	CustomerID     string // vacío para venta de mostrador sin cliente
	ReceiptNumber  string
	Status         string
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal // descuento a nivel de venta
	TaxAmount      decimal.Decimal
	ServiceCharge  decimal.Decimal
	GrandTotal     decimal.Decimal
	PaidAmount     decimal.Decimal // suma de pagos registrados al crear
	Note           string
	CUDE           string // código único del documento equivalente POS (SHA-384)
	VoidReason     string
	VoidedBy       string
	VoidedAt       *time.Time
	Items          []SaleItem
	Payments       []SalePayment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaleItem es una línea de la venta. Nombre y precio unitario quedan
// congelados al momento de la venta, independientes del catálogo.
type SaleItem struct {
	ID           string
	SaleID       string
	ProductID    string
	VariantID    string
	ProductName  string
	VariantName  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	ItemDiscount decimal.Decimal
	LineTotal    decimal.Decimal // Quantity*UnitPrice - ItemDiscount
	CreatedAt    time.Time
}

// SalePayment es un pago aplicado a la venta en el momento de crearla
// (una venta admite pagos divididos entre varios métodos).
type SalePayment struct {
	ID        string
	SaleID    string
	Method    string
	Amount    decimal.Decimal
	Reference string // voucher, número de transferencia, etc.
	CreatedAt time.Time
}
