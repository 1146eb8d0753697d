package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariantRequest variante al crear/actualizar un producto.
// Price en cero hereda el precio base.
type ProductVariantRequest struct {
	Name  string          `json:"name" validate:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price,omitempty"`
}

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string                  `json:"sku" validate:"required,min=1,max=100"`
	Name        string                  `json:"name" validate:"required,min=1,max=200"`
	Description string                  `json:"description"`
	Category    string                  `json:"category,omitempty"`
	BasePrice   decimal.Decimal         `json:"base_price"`
	TaxExempt   bool                    `json:"tax_exempt"`
	TrackStock  *bool                   `json:"track_stock,omitempty"` // default true
	Variants    []ProductVariantRequest `json:"variants,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	TaxExempt   *bool            `json:"tax_exempt"`
	IsActive    *bool            `json:"is_active"`
	TrackStock  *bool            `json:"track_stock"`
}

// UpdateProductVariantRequest entrada para actualizar una variante.
type UpdateProductVariantRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Price    *decimal.Decimal `json:"price"`
	IsActive *bool            `json:"is_active"`
}

// ProductVariantResponse variante en respuestas.
type ProductVariantResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string                   `json:"id"`
	SKU         string                   `json:"sku"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Category    string                   `json:"category,omitempty"`
	BasePrice   decimal.Decimal          `json:"base_price"`
	TaxExempt   bool                     `json:"tax_exempt"`
	IsActive    bool                     `json:"is_active"`
	TrackStock  bool                     `json:"track_stock"`
	Variants    []ProductVariantResponse `json:"variants,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
