package eventbus

import (
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// RegisterAuditLog suscribe un rastro de auditoría estructurado para todos los
// eventos de dominio. Cada operación confirmada queda en el log con sus datos
// clave, sin tocar la transacción que la originó.
func RegisterAuditLog(b *Bus, log *logger.Logger) {
	audit := log.Component("audit")

	b.Subscribe(event.NameSaleCreated, func(evt event.Event) {
		e, ok := evt.(event.SaleCreated)
		if !ok {
			return
		}
		audit.Info().
			Str("sale_id", e.SaleID).
			Str("receipt", e.ReceiptNumber).
			Str("outlet_id", e.OutletID).
			Str("status", e.Status).
			Str("total", e.GrandTotal.String()).
			Msg("venta registrada")
	})

	b.Subscribe(event.NameSaleStatusChanged, func(evt event.Event) {
		e, ok := evt.(event.SaleStatusChanged)
		if !ok {
			return
		}
		audit.Info().
			Str("sale_id", e.SaleID).
			Str("from", e.PreviousStatus).
			Str("to", e.NewStatus).
			Str("reason", e.Reason).
			Msg("venta cambió de estado")
	})

	b.Subscribe(event.NameStockLevelChanged, func(evt event.Event) {
		e, ok := evt.(event.StockLevelChanged)
		if !ok {
			return
		}
		audit.Info().
			Str("outlet_id", e.OutletID).
			Str("product_id", e.ProductID).
			Str("type", e.MovementType).
			Str("quantity", e.Quantity.String()).
			Str("new_quantity", e.NewQuantity.String()).
			Msg("movimiento de inventario")
	})

	b.Subscribe(event.NameCreditPaymentRecorded, func(evt event.Event) {
		e, ok := evt.(event.CreditPaymentRecorded)
		if !ok {
			return
		}
		audit.Info().
			Str("credit_sale_id", e.CreditSaleID).
			Str("customer_id", e.CustomerID).
			Str("amount", e.Amount.String()).
			Str("outstanding", e.Outstanding.String()).
			Bool("settled", e.Settled).
			Msg("abono a crédito")
	})

	b.Subscribe(event.NameLoyaltyPointsChanged, func(evt event.Event) {
		e, ok := evt.(event.LoyaltyPointsChanged)
		if !ok {
			return
		}
		audit.Info().
			Str("customer_id", e.CustomerID).
			Str("type", e.Type).
			Int64("points", e.Points).
			Int64("balance", e.BalanceAfter).
			Msg("movimiento de puntos")
	})
}
