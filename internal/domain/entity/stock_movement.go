package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario (value object conceptual).
const (
	MovementTypeSale        = "sale"         // salida por venta
	MovementTypePurchase    = "purchase"     // entrada por compra
	MovementTypeAdjustment  = "adjustment"   // ajuste manual (conteo físico)
	MovementTypeTransferIn  = "transfer_in"  // entrada por traslado entre puntos
	MovementTypeTransferOut = "transfer_out" // salida por traslado entre puntos
	MovementTypeWaste       = "waste"        // merma o daño
	MovementTypeReturn      = "return"       // devolución de cliente
)

// ValidMovementType indica si el tipo es uno de los reconocidos por el libro.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeSale, MovementTypePurchase, MovementTypeAdjustment,
		MovementTypeTransferIn, MovementTypeTransferOut, MovementTypeWaste,
		MovementTypeReturn:
		return true
	}
	return false
}

// StockMovement representa una entrada del libro de inventario. Es append-only:
// nunca se actualiza ni se borra. Quantity lleva signo (negativo para salidas)
// y Previous/NewQuantity dejan el saldo auditable en cada entrada.
type StockMovement struct {
	ID               string
	OutletID         string
	ProductID        string
	VariantID        string // vacío cuando el producto no maneja variantes
	Type             string
	Quantity         decimal.Decimal
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Reference        string // ID de venta, traslado o documento origen
	Note             string
	CreatedAt        time.Time
	CreatedBy        string // UserID
}
