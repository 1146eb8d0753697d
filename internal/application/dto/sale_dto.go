package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta (producto, variante opcional, cantidad).
// UnitPrice opcional: si va vacío se resuelve del catálogo (variante o base).
type SaleItemRequest struct {
	ProductID    string           `json:"product_id" validate:"required,uuid"`
	VariantID    string           `json:"variant_id,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	ItemDiscount decimal.Decimal  `json:"item_discount,omitempty"`
}

// SalePaymentRequest pago aplicado al crear la venta (admite división).
type SalePaymentRequest struct {
	Method    string          `json:"method" validate:"required,oneof=cash card transfer qr points other"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference string          `json:"reference,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	OutletID       string               `json:"outlet_id" validate:"required,uuid"`
	ShiftID        string               `json:"shift_id" validate:"required,uuid"`
	CustomerID     string               `json:"customer_id,omitempty"`
	Items          []SaleItemRequest    `json:"items" validate:"required,min=1"`
	Payments       []SalePaymentRequest `json:"payments"`
	DiscountAmount decimal.Decimal      `json:"discount_amount,omitempty"`
	ServiceCharge  decimal.Decimal      `json:"service_charge,omitempty"`
	Note           string               `json:"note,omitempty"`
	// DueDate solo aplica a ventas a crédito (formato YYYY-MM-DD).
	DueDate string `json:"due_date,omitempty"`
}

// VoidSaleRequest body para POST /api/sales/:id/void (razón obligatoria).
type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// RefundSaleRequest body para POST /api/sales/:id/refund (razón obligatoria).
type RefundSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id,omitempty"`
	ProductName  string          `json:"product_name"`
	VariantName  string          `json:"variant_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ItemDiscount decimal.Decimal `json:"item_discount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// SalePaymentResponse pago en respuestas.
type SalePaymentResponse struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// SaleResponse venta con detalle para GET /api/sales/:id.
type SaleResponse struct {
	ID             string                `json:"id"`
	OutletID       string                `json:"outlet_id"`
	ShiftID        string                `json:"shift_id"`
	EmployeeID     string                `json:"employee_id"`
	CustomerID     string                `json:"customer_id,omitempty"`
	ReceiptNumber  string                `json:"receipt_number"`
	Status         string                `json:"status"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	ServiceCharge  decimal.Decimal       `json:"service_charge"`
	GrandTotal     decimal.Decimal       `json:"grand_total"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	CUDE           string                `json:"cude,omitempty"`
	Note           string                `json:"note,omitempty"`
	VoidReason     string                `json:"void_reason,omitempty"`
	Items          []SaleItemResponse    `json:"items,omitempty"`
	Payments       []SalePaymentResponse `json:"payments,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
