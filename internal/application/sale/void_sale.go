package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// VoidSale anula una venta. Es terminal, exige razón y no repone inventario:
// la reposición es un movimiento de tipo return explícito, nunca implícito.
// El saldo a crédito vivo y los rollups del cliente sí se revierten aquí.
func (uc *CheckoutUseCase) VoidSale(ctx context.Context, userID, saleID, reason string) (*dto.SaleResponse, error) {
	return uc.changeStatus(ctx, userID, saleID, reason, entity.SaleStatusVoided)
}

// RefundSale marca una venta como devuelta. Mismas reglas que la anulación;
// la mercancía devuelta entra al inventario con un movimiento return aparte
// que referencia la venta.
func (uc *CheckoutUseCase) RefundSale(ctx context.Context, userID, saleID, reason string) (*dto.SaleResponse, error) {
	return uc.changeStatus(ctx, userID, saleID, reason, entity.SaleStatusRefunded)
}

func (uc *CheckoutUseCase) changeStatus(ctx context.Context, userID, saleID, reason, newStatus string) (*dto.SaleResponse, error) {
	if saleID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var sale *entity.Sale
	var previousStatus string

	err := uc.txRunner.RunSale(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
		creditRepo repository.CreditSaleRepository,
		customerRepo repository.CustomerRepository,
	) error {
		var err error
		sale, err = saleRepo.GetForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrSaleNotFound
		}
		switch sale.Status {
		case entity.SaleStatusCompleted, entity.SaleStatusCredit, entity.SaleStatusPartiallyPaid:
		default:
			return domain.ErrSaleNotVoidable
		}
		previousStatus = sale.Status

		if err := saleRepo.UpdateStatus(saleID, newStatus, reason, userID, &now); err != nil {
			return err
		}

		if sale.CustomerID != "" {
			// La deuda viva muere con la venta; la cuenta queda como registro
			// histórico y la recomputación la excluye por el estado del padre.
			credit, err := creditRepo.GetBySaleID(saleID)
			if err != nil {
				return err
			}
			if credit != nil && credit.OutstandingAmount.GreaterThan(decimal.Zero) {
				if err := customerRepo.IncrementCreditBalance(sale.CustomerID, credit.OutstandingAmount.Neg()); err != nil {
					return err
				}
			}
			if err := customerRepo.ReverseSaleRollup(sale.CustomerID, sale.GrandTotal); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(event.SaleStatusChanged{
		SaleID:         saleID,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		Reason:         reason,
		OccurredAt:     now,
	})

	uc.log.Info().
		Str("sale_id", saleID).
		Str("previous_status", previousStatus).
		Str("new_status", newStatus).
		Str("reason", reason).
		Msg("estado de venta cambiado")

	sale.Status = newStatus
	sale.VoidReason = reason
	sale.VoidedBy = userID
	sale.VoidedAt = &now
	return toSaleResponse(sale), nil
}
