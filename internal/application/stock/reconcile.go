package stock

import (
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// ReconcileUseCase compara cada fila de existencias contra la suma de su
// libro de movimientos y reporta las que no cuadran. Es un diagnóstico: no
// corrige nada; una discrepancia solo puede aparecer por escrituras fuera
// del libro o corrupción, y merece revisión manual.
type ReconcileUseCase struct {
	levelRepo repository.StockLevelRepository
	log       *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(levelRepo repository.StockLevelRepository, log *logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{levelRepo: levelRepo, log: log}
}

// Run ejecuta la conciliación de un punto de venta y devuelve las
// discrepancias encontradas, dejando cada una en el log.
func (uc *ReconcileUseCase) Run(outletID string) ([]*repository.StockDiscrepancy, error) {
	if outletID == "" {
		return nil, domain.ErrInvalidInput
	}
	discrepancies, err := uc.levelRepo.ListDiscrepancies(outletID)
	if err != nil {
		return nil, err
	}
	for _, d := range discrepancies {
		uc.log.Error().
			Str("outlet_id", d.OutletID).
			Str("product_id", d.ProductID).
			Str("variant_id", d.VariantID).
			Str("level_quantity", d.LevelQuantity.String()).
			Str("movement_sum", d.MovementSum.String()).
			Msg("discrepancia de inventario: la existencia no cuadra con su libro")
	}
	if len(discrepancies) == 0 {
		uc.log.Info().Str("outlet_id", outletID).Msg("conciliación de inventario sin discrepancias")
	}
	return discrepancies, nil
}
