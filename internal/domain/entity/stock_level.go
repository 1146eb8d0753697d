package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa la existencia actual de un producto (o una de sus
// variantes) en un punto de venta. Una fila por (outlet, producto, variante);
// VariantID vacío cuando el producto no maneja variantes. La fila se crea
// perezosamente en cero con el primer movimiento.
//
// Invariante: Quantity nunca es negativa y siempre iguala la suma de los
// movimientos del libro para la misma clave.
type StockLevel struct {
	OutletID      string
	ProductID     string
	VariantID     string
	Quantity      decimal.Decimal
	LowStockAlert decimal.Decimal // umbral de alerta; cero desactiva la alerta
	UpdatedAt     time.Time
}
