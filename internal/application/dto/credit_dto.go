package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordCreditPaymentRequest body para POST /api/credits/:id/payments.
type RecordCreditPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Method    string          `json:"method" validate:"required,oneof=cash card transfer qr other"`
	Reference string          `json:"reference,omitempty"`
}

// CreditPaymentResponse abono en respuestas.
type CreditPaymentResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedBy string          `json:"received_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreditSaleResponse cuenta por cobrar para GET /api/credits/:id.
type CreditSaleResponse struct {
	ID                string                  `json:"id"`
	SaleID            string                  `json:"sale_id"`
	CustomerID        string                  `json:"customer_id"`
	TotalAmount       decimal.Decimal         `json:"total_amount"`
	PaidAmount        decimal.Decimal         `json:"paid_amount"`
	OutstandingAmount decimal.Decimal         `json:"outstanding_amount"`
	Status            string                  `json:"status"`
	DueDate           string                  `json:"due_date,omitempty"`
	Payments          []CreditPaymentResponse `json:"payments,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// CreditSaleListResponse lista paginada de cuentas por cobrar.
type CreditSaleListResponse struct {
	Items []CreditSaleResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
