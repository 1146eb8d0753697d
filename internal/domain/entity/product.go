package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto vendible del catálogo.
// El precio efectivo de una variante es Variant.Price, o BasePrice si la
// variante no define precio propio. Los productos con TrackStock en false
// no pasan por el libro de inventario.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Category    string
	BasePrice   decimal.Decimal // precio de venta en unidades enteras de moneda
	TaxExempt   bool            // excluido de IVA; no aporta a la base gravable
	IsActive    bool
	TrackStock  bool
	Variants    []ProductVariant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductVariant es una presentación del producto (talla, sabor, tamaño).
// Price en cero significa que hereda BasePrice del producto.
type ProductVariant struct {
	ID        string
	ProductID string
	Name      string
	Price     decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
