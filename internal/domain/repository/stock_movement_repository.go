package repository

import (
	"time"

	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el libro de
// movimientos de inventario (append-only: sin Update ni Delete).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(reference string) ([]*entity.StockMovement, error)
}
