package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	DocumentID string `json:"document_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
}

// UpdateCustomerRequest body para PUT /api/customers/:id.
// Los campos derivados (saldos, visitas, puntos) no se tocan por aquí.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// CustomerResponse cliente con sus rollups derivados.
type CustomerResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	DocumentID    string          `json:"document_id,omitempty"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	VisitCount    int64           `json:"visit_count"`
	LoyaltyPoints int64           `json:"loyalty_points"`
	LoyaltyTier   string          `json:"loyalty_tier,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
