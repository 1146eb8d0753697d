package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// StockDiscrepancy resultado crudo de la conciliación: una fila de existencias
// cuya cantidad no iguala la suma de sus movimientos. Lo produce la DB; el
// caso de uso lo reporta sin corregir nada.
type StockDiscrepancy struct {
	OutletID      string
	ProductID     string
	VariantID     string
	LevelQuantity decimal.Decimal
	MovementSum   decimal.Decimal
}

// StockLevelRepository define el puerto para consultar/actualizar existencias
// por (outlet, producto, variante). Usado dentro de transacciones para
// garantizar consistencia.
type StockLevelRepository interface {
	Get(outletID, productID, variantID string) (*entity.StockLevel, error)
	// EnsureRow crea la fila en cero si no existe (INSERT ... ON CONFLICT DO
	// NOTHING). Necesario antes de GetForUpdate: una fila inexistente no se
	// puede bloquear.
	EnsureRow(outletID, productID, variantID string) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(outletID, productID, variantID string) (*entity.StockLevel, error)
	// ApplyDelta suma delta (con signo) con guarda de no-negatividad
	// (UPDATE ... WHERE quantity + delta >= 0) y devuelve la cantidad
	// resultante. Si la guarda no deja pasar retorna ErrInsufficientStock.
	ApplyDelta(outletID, productID, variantID string, delta decimal.Decimal) (decimal.Decimal, error)
	SetAlertThreshold(outletID, productID, variantID string, threshold decimal.Decimal) error
	ListByOutlet(outletID string, limit, offset int) ([]*entity.StockLevel, error)
	// ListLowStock devuelve las filas en o bajo su umbral de alerta
	// (umbral cero excluido: alerta desactivada).
	ListLowStock(outletID string) ([]*entity.StockLevel, error)
	// ListDiscrepancies compara cada fila contra la suma de sus movimientos.
	ListDiscrepancies(outletID string) ([]*StockDiscrepancy, error)
}
