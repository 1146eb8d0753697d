package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre existencias y libro de
// movimientos (fuera de transacción).
type QueryUseCase struct {
	levelRepo repository.StockLevelRepository
	movRepo   repository.StockMovementRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
) *QueryUseCase {
	return &QueryUseCase{levelRepo: levelRepo, movRepo: movRepo}
}

// GetLevel devuelve la existencia actual de una clave (cero si nunca ha
// tenido movimientos).
func (uc *QueryUseCase) GetLevel(outletID, productID, variantID string) (*entity.StockLevel, error) {
	if outletID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.levelRepo.Get(outletID, productID, variantID)
}

// ListLevels lista las existencias de un punto de venta.
func (uc *QueryUseCase) ListLevels(outletID string, limit, offset int) ([]*entity.StockLevel, error) {
	if outletID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.levelRepo.ListByOutlet(outletID, limit, offset)
}

// ListLowStock lista las existencias en o bajo su umbral de alerta.
func (uc *QueryUseCase) ListLowStock(outletID string) ([]*entity.StockLevel, error) {
	if outletID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.levelRepo.ListLowStock(outletID)
}

// SetAlertThreshold fija el umbral de alerta de una clave (cero desactiva).
func (uc *QueryUseCase) SetAlertThreshold(outletID, productID, variantID string, threshold decimal.Decimal) error {
	if outletID == "" || productID == "" || threshold.IsNegative() {
		return domain.ErrInvalidInput
	}
	return uc.levelRepo.SetAlertThreshold(outletID, productID, variantID, threshold)
}

// ListMovementsByProduct historial del libro para un producto.
func (uc *QueryUseCase) ListMovementsByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByProduct(productID, from, to, limit, offset)
}

// ListMovementsByOutlet historial del libro para un punto de venta.
func (uc *QueryUseCase) ListMovementsByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if outletID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByOutlet(outletID, from, to, limit, offset)
}
